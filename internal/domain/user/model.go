package user

import "time"

// Principal is the identity resolved from an access token.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
}

// User is a pool member profile.
type User struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
