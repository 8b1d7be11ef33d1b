package papers

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

// PostgresRepository implements catalog storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const detailColumns = `
	p.id, p.title, p.branch, p.semester, p.subject_id, p.year, p.type,
	p.description, p.file_url, p.storage_key, p.uploader_id, p.status,
	p.downloads, p.created_at,
	u.name, u.rollno, s.name, s.code`

const detailJoins = `
	FROM papers p
	JOIN users u ON u.id = p.uploader_id
	JOIN subjects s ON s.id = p.subject_id`

func scanDetail(scan func(dest ...any) error) (*models.PaperDetail, error) {
	d := &models.PaperDetail{}
	err := scan(&d.ID, &d.Title, &d.Branch, &d.Semester, &d.SubjectID, &d.Year, &d.Type,
		&d.Description, &d.FileURL, &d.StorageKey, &d.UploaderID, &d.Status,
		&d.Downloads, &d.CreatedAt,
		&d.UploaderName, &d.UploaderRollNo, &d.SubjectName, &d.SubjectCode)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new catalog record. The caller sets status; uploads
// always pass pending.
func (r *PostgresRepository) Create(ctx context.Context, paper *models.Paper) (*models.Paper, error) {
	query := `
		INSERT INTO papers (title, branch, semester, subject_id, year, type, description,
			file_url, storage_key, uploader_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, downloads, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		paper.Title, paper.Branch, paper.Semester, paper.SubjectID, paper.Year,
		paper.Type, paper.Description, paper.FileURL, paper.StorageKey,
		paper.UploaderID, paper.Status).
		Scan(&paper.ID, &paper.Downloads, &paper.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return paper, nil
}

// GetByID returns one paper joined with uploader and subject display fields.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PaperDetail, error) {
	query := `SELECT` + detailColumns + detailJoins + ` WHERE p.id = $1`
	d, err := scanDetail(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// List returns a page of papers matching filter plus the total match count.
// Ordering is most-recently-created first with a stable id tie-break.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.PaperDetail, int64, error) {
	var conds []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("p.status = $%d", filter.Status)
	}
	if filter.Branch != "" {
		add("p.branch = $%d", filter.Branch)
	}
	if filter.Semester != 0 {
		add("p.semester = $%d", filter.Semester)
	}
	if filter.Subject != "" {
		add("p.subject_id = $%d", filter.Subject)
	}
	if filter.Year != 0 {
		add("p.year = $%d", filter.Year)
	}
	if filter.Type != "" {
		add("p.type = $%d", filter.Type)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*)` + detailJoins + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
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
	offset := (page - 1) * limit

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`SELECT%s%s%s ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d`,
		detailColumns, detailJoins, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PaperDetail
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// ListByUploader returns every paper owned by uploaderID in any status.
func (r *PostgresRepository) ListByUploader(ctx context.Context, uploaderID string) ([]*models.PaperDetail, error) {
	query := `SELECT` + detailColumns + detailJoins +
		` WHERE p.uploader_id = $1 ORDER BY p.created_at DESC, p.id`
	rows, err := r.db.QueryContext(ctx, query, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PaperDetail
	for rows.Next() {
		d, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// IncrementDownloads performs a store-level atomic add so concurrent
// downloads never lose updates.
func (r *PostgresRepository) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE papers SET downloads = downloads + 1
		WHERE id = $1
		RETURNING downloads
	`
	var downloads int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&downloads); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return downloads, nil
}

// UpdateStatus writes a new moderation status. The state machine check
// happens in the service; this is the raw write.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.PaperStatus) error {
	query := `UPDATE papers SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
