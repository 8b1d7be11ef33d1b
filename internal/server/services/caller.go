// Package services contains server-side business logic: registration and
// login, the paper upload pipeline, moderation-gated retrieval, subject
// aggregates, and feature requests.
package services

import "github.com/campusvault/pyqhub/internal/server/models"

// Caller identifies the authenticated requester. A nil *Caller means the
// request is anonymous.
type Caller struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == models.RoleAdmin
}

// Owns reports whether the caller owns the given uploader id.
func (c *Caller) Owns(uploaderID string) bool {
	return c != nil && c.UserID == uploaderID
}
