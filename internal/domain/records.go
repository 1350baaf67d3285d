package domain

import "time" // Timestamps

// IssuedToken tracks an access token by its jti so logout can revoke it
type IssuedToken struct {
	ID        string     `json:"id" gorm:"primaryKey;size:64"`     // jti claim
	UserID    string     `json:"user_id" gorm:"index;size:64"`     // Token owner
	ExpiresAt time.Time  `json:"expires_at"`                       // exp claim
	RevokedAt *time.Time `json:"revoked_at,omitempty" gorm:"index"` // Set on logout
	CreatedAt time.Time  `json:"created_at"`
}

// IdempotencyRecord stores the result of a mutating tool call under its key
type IdempotencyRecord struct {
	Key       string    `json:"key" gorm:"primaryKey;size:128"` // Client-generated idempotency key
	ActorID   string    `json:"actor_id" gorm:"index;size:64"`  // User who sent the key
	Tool      string    `json:"tool" gorm:"size:64"`            // Tool that produced the result
	Result    []byte    `json:"result"`                         // JSON result replayed on retry
	CreatedAt time.Time `json:"created_at"`
}
