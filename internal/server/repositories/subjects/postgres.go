package subjects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/dbx"
	"github.com/campusvault/pyqhub/internal/server/models"
)

// PostgresRepository implements subject storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID resolves one subject.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `SELECT id, name, code, branch, semester, credits, created_at FROM subjects WHERE id = $1`
	s := &models.Subject{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.Code, &s.Branch, &s.Semester, &s.Credits, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// ListWithStats pages subjects and computes, per subject, the count of
// approved papers and the sum of their download counters. Computed on
// demand with no caching; fine at this system's data volume.
func (r *PostgresRepository) ListWithStats(ctx context.Context, filter ListFilter) ([]*models.SubjectStats, int64, error) {
	var conds []string
	var args []any

	if filter.Branch != "" {
		args = append(args, filter.Branch)
		conds = append(conds, fmt.Sprintf("s.branch = $%d", len(args)))
	}
	if filter.Semester != 0 {
		args = append(args, filter.Semester)
		conds = append(conds, fmt.Sprintf("s.semester = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
		SELECT s.id, s.name, s.code, s.branch, s.semester, s.credits, s.created_at,
			COUNT(p.id) AS pyqs_available,
			COALESCE(SUM(p.downloads), 0) AS downloads
		FROM subjects s
		LEFT JOIN papers p ON p.subject_id = s.id AND p.status = 'approved'
		%s
		GROUP BY s.id, s.name, s.code, s.branch, s.semester, s.credits, s.created_at
		ORDER BY s.branch, s.semester, s.name, s.id
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SubjectStats
	for rows.Next() {
		s := &models.SubjectStats{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.Branch, &s.Semester, &s.Credits,
			&s.CreatedAt, &s.PYQsAvailable, &s.Downloads); err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
