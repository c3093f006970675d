package models

import "time"

// User is an account of the demo user store.
type User struct {
	// UserID is the store-assigned identifier.
	UserID int64 `json:"id"`

	// Login is the unique user login.
	Login string `json:"login"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// PasswordHash is the bcrypt hash of the password. It never leaves the
	// server.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// RegisterRequest is the payload of a user registration.
type RegisterRequest struct {
	Login    string `json:"login"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
