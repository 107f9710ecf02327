package identity

import "time"

// User represents a registered wallet owner in the credential store.
type User struct {
	ID           int64
	Email        string
	FullName     string
	Phone        string
	PasswordHash []byte
	Active       bool
	CreatedAt    time.Time
}
