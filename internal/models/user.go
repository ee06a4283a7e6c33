package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email,omitempty"`
	Password string `json:"-"` // bcrypt hash, never serialize
	// Authenticated mirrors the users.is_auth column. Nothing reads it.
	Authenticated bool      `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}
