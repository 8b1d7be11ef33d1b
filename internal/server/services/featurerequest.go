package services

import (
	"context"
	"database/sql"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/repositories/repomanager"
	"github.com/campusvault/pyqhub/internal/server/validation"
)

// FeatureRequestService records user-submitted feature requests.
type FeatureRequestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewFeatureRequestService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *FeatureRequestService {
	return &FeatureRequestService{db: db, repomanager: m, logger: l.With("module", "featurerequests")}
}

// FeatureRequestInput is a new submission.
type FeatureRequestInput struct {
	Category    string
	Title       string
	Description string
}

// Create validates and stores a feature request. New requests always
// start out pending.
func (s *FeatureRequestService) Create(ctx context.Context, requesterID string, in FeatureRequestInput) (*models.FeatureRequest, error) {
	if err := validation.FeatureRequestRules().Err(map[string]string{
		"category":     in.Category,
		"featureTitle": in.Title,
		"description":  in.Description,
	}); err != nil {
		return nil, err
	}

	fr := &models.FeatureRequest{
		Category:    in.Category,
		Title:       in.Title,
		Description: in.Description,
		RequesterID: requesterID,
		Status:      models.FeatureStatusPending,
	}
	created, err := s.repomanager.FeatureRequests(s.db).Create(ctx, fr)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return created, nil
}

// ListMine returns the caller's own submissions, newest first.
func (s *FeatureRequestService) ListMine(ctx context.Context, requesterID string) ([]*models.FeatureRequest, error) {
	return s.repomanager.FeatureRequests(s.db).ListByRequester(ctx, requesterID)
}
