package models

import "time"

// User is the operator profile returned by the loyalty backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name shown in the page header.
func (u User) DisplayName() string {
	if u.Name == "" {
		return "Guest"
	}
	return u.Name
}
