package featurerequests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvault/pyqhub/internal/server/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO feature_requests").
		WithArgs("u1", "search", "Filter by professor", "Patterns repeat.", models.FeatureStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("fr1", now))

	fr, err := repo.Create(context.Background(), &models.FeatureRequest{
		RequesterID: "u1",
		Category:    "search",
		Title:       "Filter by professor",
		Description: "Patterns repeat.",
		Status:      models.FeatureStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "fr1", fr.ID)
	assert.Equal(t, now, fr.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO feature_requests").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(context.Background(), &models.FeatureRequest{RequesterID: "u1"})
	require.Error(t, err)
}

func TestListByRequester(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM feature_requests").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "requester_id", "category", "title", "description", "status", "created_at",
		}).
			AddRow("fr2", "u1", "ui", "Dark mode", "Please.", "pending", now).
			AddRow("fr1", "u1", "search", "Filter by professor", "Patterns.", "implemented", now.Add(-time.Hour)))

	list, err := repo.ListByRequester(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dark mode", list[0].Title)
	assert.Equal(t, models.FeatureStatusImplemented, list[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
