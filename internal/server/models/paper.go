package models

import "time"

// Branch is the academic branch taxonomy. The set is fixed; papers and
// subjects outside it are rejected at validation time.
type Branch string

const (
	BranchCSE Branch = "CSE"
	BranchECE Branch = "ECE"
	BranchEE  Branch = "EE"
	BranchME  Branch = "ME"
	BranchCE  Branch = "CE"
	BranchIT  Branch = "IT"
)

// Branches lists every valid branch code.
var Branches = []Branch{BranchCSE, BranchECE, BranchEE, BranchME, BranchCE, BranchIT}

// BranchStrings returns the branch codes as plain strings, for enum checks.
func BranchStrings() []string {
	out := make([]string, len(Branches))
	for i, b := range Branches {
		out[i] = string(b)
	}
	return out
}

// PaperType classifies what kind of assessment a paper is.
type PaperType string

const (
	PaperTypePeriodicTest PaperType = "Periodic Test"
	PaperTypePreviousYear PaperType = "Previous Year Question Paper"
	PaperTypeQuestionBank PaperType = "Question Bank"
)

// PaperTypes lists every valid paper type.
var PaperTypes = []PaperType{PaperTypePeriodicTest, PaperTypePreviousYear, PaperTypeQuestionBank}

// PaperTypeStrings returns the paper types as plain strings, for enum checks.
func PaperTypeStrings() []string {
	out := make([]string, len(PaperTypes))
	for i, t := range PaperTypes {
		out[i] = string(t)
	}
	return out
}

// PaperStatus is the moderation state of a paper.
type PaperStatus string

const (
	StatusPending  PaperStatus = "pending"
	StatusApproved PaperStatus = "approved"
	StatusRejected PaperStatus = "rejected"
)

// paperTransitions is the complete moderation state machine. There is no
// path back to pending and no approved<->rejected transition; widening the
// machine is a product decision, not a code change elsewhere.
var paperTransitions = map[PaperStatus][]PaperStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

// CanTransitionTo reports whether the moderation state machine permits
// moving from s to next.
func (s PaperStatus) CanTransitionTo(next PaperStatus) bool {
	for _, allowed := range paperTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the known moderation states.
func (s PaperStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Paper is one catalog record describing an uploaded question-paper PDF.
// FileURL/StorageKey reference the binary in object storage; the binary
// itself is never stored in the catalog.
type Paper struct {
	ID          string
	Title       string
	Branch      Branch
	Semester    int
	SubjectID   string
	Year        int
	Type        PaperType
	Description string
	FileURL     string
	StorageKey  string
	UploaderID  string
	Status      PaperStatus
	Downloads   int64
	CreatedAt   time.Time
}

// PaperDetail is a Paper joined with uploader and subject display fields,
// the shape the read paths return.
type PaperDetail struct {
	Paper
	UploaderName   string
	UploaderRollNo string
	SubjectName    string
	SubjectCode    string
}
