package subjects

import (
	"context"

	"github.com/campusvault/pyqhub/internal/server/models"
)

// ListFilter narrows and pages the subject list.
type ListFilter struct {
	Branch   string
	Semester int
	Page     int
	Limit    int
}

// Repository persists the subject taxonomy.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	// ListWithStats returns a page of subjects with per-subject aggregates
	// over approved papers, plus the total subject count for the filter.
	ListWithStats(ctx context.Context, filter ListFilter) ([]*models.SubjectStats, int64, error)
}
