// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the authorization role carried in tokens and on user records.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// User is a registered account. RollNo and Email are unique.
// ResetCode/ResetCodeExpires are set for the duration of a password-reset
// flow and cleared on successful consumption.
type User struct {
	ID               string
	Name             string
	RollNo           string
	Email            string
	PasswordHash     string
	Role             Role
	ResetCode        *string
	ResetCodeExpires *time.Time
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
