package subjects

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusvault/pyqhub/internal/common"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM subjects").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListWithStats_Aggregates(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subjects s WHERE s\.branch = \$1`).
		WithArgs("CSE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`LEFT JOIN papers p ON p\.subject_id = s\.id AND p\.status = 'approved'`).
		WithArgs("CSE", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "code", "branch", "semester", "credits", "created_at",
			"pyqs_available", "downloads",
		}).
			AddRow("s1", "Data Structures", "CS201", "CSE", 3, 4, now, int64(5), int64(120)).
			AddRow("s2", "Operating Systems", "CS301", "CSE", 5, 4, now, int64(0), int64(0)))

	result, total, err := repo.ListWithStats(context.Background(), ListFilter{Branch: "CSE", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, result, 2)
	require.Equal(t, int64(5), result[0].PYQsAvailable)
	require.Equal(t, int64(120), result[0].Downloads)
	require.Zero(t, result[1].PYQsAvailable)
}
