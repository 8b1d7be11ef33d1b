package featurerequests

import (
	"context"

	"github.com/campusvault/pyqhub/internal/server/models"
)

// Repository persists user feedback.
type Repository interface {
	Create(ctx context.Context, req *models.FeatureRequest) (*models.FeatureRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*models.FeatureRequest, error)
}
