package papers

import (
	"context"

	"github.com/campusvault/pyqhub/internal/server/models"
)

// ListFilter narrows and pages the catalog list. Zero values mean
// "no constraint" for the optional fields.
type ListFilter struct {
	Branch   string
	Semester int
	Subject  string
	Year     int
	Type     string
	// Status filters by moderation status; read paths set it to approved
	// for non-admin callers before it reaches the repository.
	Status string
	Page   int
	Limit  int
}

// Repository persists the paper catalog.
type Repository interface {
	Create(ctx context.Context, paper *models.Paper) (*models.Paper, error)
	GetByID(ctx context.Context, id string) (*models.PaperDetail, error)
	List(ctx context.Context, filter ListFilter) ([]*models.PaperDetail, int64, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]*models.PaperDetail, error)
	// IncrementDownloads atomically adds one to the download counter and
	// returns the new value.
	IncrementDownloads(ctx context.Context, id string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status models.PaperStatus) error
}
