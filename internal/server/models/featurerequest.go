package models

import "time"

// FeatureRequestStatus tracks the lifecycle of a piece of user feedback.
type FeatureRequestStatus string

const (
	FeatureStatusPending     FeatureRequestStatus = "pending"
	FeatureStatusUnderReview FeatureRequestStatus = "under-review"
	FeatureStatusApproved    FeatureRequestStatus = "approved"
	FeatureStatusRejected    FeatureRequestStatus = "rejected"
	FeatureStatusImplemented FeatureRequestStatus = "implemented"
)

// FeatureRequest is free-standing user feedback.
type FeatureRequest struct {
	ID          string
	RequesterID string
	Category    string
	Title       string
	Description string
	Status      FeatureRequestStatus
	CreatedAt   time.Time
}
