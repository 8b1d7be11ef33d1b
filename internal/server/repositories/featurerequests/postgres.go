package featurerequests

import (
	"context"
	"fmt"

	"github.com/campusvault/pyqhub/internal/dbx"
	"github.com/campusvault/pyqhub/internal/server/models"
)

// PostgresRepository implements feedback storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new feature request with status pending.
func (r *PostgresRepository) Create(ctx context.Context, req *models.FeatureRequest) (*models.FeatureRequest, error) {
	query := `
		INSERT INTO feature_requests (requester_id, category, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		req.RequesterID, req.Category, req.Title, req.Description, req.Status).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

// ListByRequester returns the caller's feedback, newest first.
func (r *PostgresRepository) ListByRequester(ctx context.Context, requesterID string) ([]*models.FeatureRequest, error) {
	query := `
		SELECT id, requester_id, category, title, description, status, created_at
		FROM feature_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FeatureRequest
	for rows.Next() {
		fr := &models.FeatureRequest{}
		if err := rows.Scan(&fr.ID, &fr.RequesterID, &fr.Category, &fr.Title,
			&fr.Description, &fr.Status, &fr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
