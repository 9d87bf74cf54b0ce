package models

import "time"

// BlacklistedToken is a refresh token JTI that can no longer be used.
// Rows are purged by the scheduler once expires_at has passed.
type BlacklistedToken struct {
	JTI           string    `json:"jti"`
	UserID        int       `json:"user_id"`
	ExpiresAt     time.Time `json:"expires_at"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
}
