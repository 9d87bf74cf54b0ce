package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// TokenRepo persists blacklisted refresh tokens.
type TokenRepo struct {
	DB *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db}
}

// Blacklist records a refresh token JTI so it can no longer be used.
// Returns ErrConflict when the token is already blacklisted.
func (r *TokenRepo) Blacklist(ctx context.Context, jti string, userID int, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO token_blacklist (jti, user_id, expires_at) VALUES ($1, $2, $3)`,
		jti, userID, expiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

// IsBlacklisted reports whether the given JTI has been blacklisted.
func (r *TokenRepo) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE jti = $1)`, jti).
		Scan(&exists)
	return exists, err
}

// PurgeExpired deletes blacklist rows whose token has expired anyway and
// returns the number of rows removed.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
