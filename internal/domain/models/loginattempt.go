// internal/domain/models/loginattempt.go
package models

import "time"

// LoginAttempt is a single recorded attempt against a rate-limited
// operation (login, signup). Rows are append-only and expire out of the
// sliding window; they carry no relationships to other collections.
type LoginAttempt struct {
	Identifier string    `bson:"identifier" json:"identifier"` // normalized email or client IP
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
