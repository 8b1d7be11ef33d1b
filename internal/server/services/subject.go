package services

import (
	"context"
	"database/sql"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/repositories/repomanager"
	"github.com/campusvault/pyqhub/internal/server/repositories/subjects"
)

// SubjectService serves the subject catalog with per-subject aggregates.
type SubjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewSubjectService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *SubjectService {
	return &SubjectService{db: db, repomanager: m, logger: l.With("module", "subjects")}
}

// SubjectQuery narrows and pages the subject list.
type SubjectQuery struct {
	Branch   string
	Semester int
	Page     int
	Limit    int
}

// SubjectPage is one page of subjects with their aggregates.
type SubjectPage struct {
	Items      []*models.SubjectStats
	TotalCount int64
	Page       int
	Limit      int
}

// TotalPages computes the page count for the query's limit.
func (p *SubjectPage) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (p.TotalCount + int64(p.Limit) - 1) / int64(p.Limit)
}

// List returns subjects with the count of approved papers and the sum of
// their downloads. Aggregates only ever reflect approved papers.
func (s *SubjectService) List(ctx context.Context, q SubjectQuery) (*SubjectPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	items, total, err := s.repomanager.Subjects(s.db).ListWithStats(ctx, subjects.ListFilter{
		Branch:   q.Branch,
		Semester: q.Semester,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &SubjectPage{Items: items, TotalCount: total, Page: page, Limit: limit}, nil
}
