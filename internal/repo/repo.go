package repo

import "errors"

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned on unique constraint violations (duplicate username,
// already-blacklisted token).
var ErrConflict = errors.New("record already exists")
