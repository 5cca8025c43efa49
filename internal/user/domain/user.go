package domain

import "time"

type ID int64

type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Summary is the password-free view used by listings.
type Summary struct {
	ID        ID
	Username  string
	CreatedAt time.Time
}
