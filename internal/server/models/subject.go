package models

import "time"

// Subject is a taxonomy entity papers reference and filter by.
type Subject struct {
	ID        string
	Name      string
	Code      string
	Branch    Branch
	Semester  int
	Credits   int
	CreatedAt time.Time
}

// SubjectStats is a Subject with on-demand aggregates over approved papers.
type SubjectStats struct {
	Subject
	PYQsAvailable int64
	Downloads     int64
}
