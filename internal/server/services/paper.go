package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/config"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/repositories/papers"
	"github.com/campusvault/pyqhub/internal/server/repositories/repomanager"
	"github.com/campusvault/pyqhub/internal/server/storage"
	"github.com/campusvault/pyqhub/internal/server/validation"
)

// newStorageKey is a seam for tests.
var newStorageKey = storage.NewStorageKey

// PaperService owns the paper catalog: the upload pipeline, the
// moderation gate on every read path, download resolution, and status
// transitions.
type PaperService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blob        storage.BlobStore
	logger      logging.Logger

	maxUploadBytes int64
}

// NewPaperService constructs a PaperService using repositories, the blob
// store, and server config.
func NewPaperService(db *sql.DB, m repomanager.RepositoryManager, blob storage.BlobStore, l logging.Logger, cfg *config.Config) *PaperService {
	return &PaperService{
		db:             db,
		repomanager:    m,
		blob:           blob,
		logger:         l.With("module", "papers"),
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// UploadInput is a decoded multipart submission. Metadata fields stay raw
// strings so the constraint table reports every format problem per field.
type UploadInput struct {
	Title       string
	Branch      string
	Semester    string
	Subject     string
	Year        string
	Type        string
	Description string

	FileName    string
	ContentType string
	Data        []byte
}

// Upload validates the submission, stores the binary, and writes a
// pending catalog record. Checks run in order and short-circuit: metadata
// presence/format first, then the file itself. No blob object and no
// catalog row exist after any failure before the blob put; a catalog
// failure after a successful put leaves an orphan object, which is logged
// and accepted.
func (s *PaperService) Upload(ctx context.Context, uploaderID string, in UploadInput) (*models.Paper, error) {
	if err := validation.UploadRules(time.Now()).Err(map[string]string{
		"title":    in.Title,
		"branch":   in.Branch,
		"semester": in.Semester,
		"subject":  in.Subject,
		"year":     in.Year,
		"type":     in.Type,
	}); err != nil {
		return nil, err
	}

	if len(in.Data) == 0 {
		return nil, common.NewValidationError(common.FieldError{Field: "pdf", Message: "file is required"})
	}
	if int64(len(in.Data)) > s.maxUploadBytes {
		return nil, common.ErrPayloadTooLarge
	}
	if mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(in.ContentType, ";", 2)[0])); mediaType != "application/pdf" {
		return nil, common.NewValidationError(common.FieldError{Field: "pdf", Message: "must be a PDF file"})
	}

	if _, err := s.repomanager.Subjects(s.db).GetByID(ctx, in.Subject); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError(common.FieldError{Field: "subject", Message: "unknown subject"})
		}
		return nil, common.ErrorInternal
	}

	year, _ := strconv.Atoi(in.Year)
	semester, _ := strconv.Atoi(in.Semester)

	key := newStorageKey()
	url, err := s.blob.Put(ctx, key, in.ContentType, in.Data)
	if err != nil {
		s.logger.Error(ctx, "blob store put failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	paper := &models.Paper{
		Title:       in.Title,
		Branch:      models.Branch(in.Branch),
		Semester:    semester,
		SubjectID:   in.Subject,
		Year:        year,
		Type:        models.PaperType(in.Type),
		Description: in.Description,
		FileURL:     url,
		StorageKey:  key,
		UploaderID:  uploaderID,
		Status:      models.StatusPending,
	}

	created, err := s.repomanager.Papers(s.db).Create(ctx, paper)
	if err != nil {
		// The object is already durable; no compensating delete.
		s.logger.Warn(ctx, "catalog write failed after blob put, orphan object", "key", key, "error", err)
		return nil, common.ErrorInternal
	}
	return created, nil
}

// gate applies the moderation visibility policy to a single paper.
func gate(caller *Caller, paper *models.PaperDetail) error {
	if paper.Status == models.StatusApproved {
		return nil
	}
	if caller.IsAdmin() || caller.Owns(paper.UploaderID) {
		return nil
	}
	return common.ErrorForbidden
}

// Get resolves one paper and applies the moderation gate.
func (s *PaperService) Get(ctx context.Context, caller *Caller, id string) (*models.PaperDetail, error) {
	paper, err := s.repomanager.Papers(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := gate(caller, paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// ListQuery narrows and pages the public catalog list.
type ListQuery struct {
	Branch   string
	Semester int
	Subject  string
	Year     int
	Type     string
	// Status is honored only for admin callers; everyone else always
	// gets approved papers.
	Status string
	Page   int
	Limit  int
}

// Page is one page of catalog results.
type Page struct {
	Items      []*models.PaperDetail
	TotalCount int64
	Page       int
	Limit      int
}

// TotalPages computes the page count for the query's limit.
func (p *Page) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (p.TotalCount + int64(p.Limit) - 1) / int64(p.Limit)
}

// List returns a filtered page of papers. Non-admin callers are silently
// pinned to approved papers regardless of the requested status.
func (s *PaperService) List(ctx context.Context, caller *Caller, q ListQuery) (*Page, error) {
	status := string(models.StatusApproved)
	if caller.IsAdmin() && q.Status != "" {
		status = q.Status
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	items, total, err := s.repomanager.Papers(s.db).List(ctx, papers.ListFilter{
		Branch:   q.Branch,
		Semester: q.Semester,
		Subject:  q.Subject,
		Year:     q.Year,
		Type:     q.Type,
		Status:   status,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Page{Items: items, TotalCount: total, Page: page, Limit: limit}, nil
}

// ListMine returns the caller's own uploads in any status.
func (s *PaperService) ListMine(ctx context.Context, userID string) ([]*models.PaperDetail, error) {
	return s.repomanager.Papers(s.db).ListByUploader(ctx, userID)
}

// DownloadResult carries the resolved binary location and a suggested
// client-side filename.
type DownloadResult struct {
	URL      string
	Filename string
}

// Download applies the moderation gate, resolves a short-lived URL for
// the binary, and bumps the download counter. The increment is a
// best-effort side effect on a detached goroutine: the response neither
// awaits nor fails on it, but the store-level add itself is atomic.
func (s *PaperService) Download(ctx context.Context, caller *Caller, id string) (*DownloadResult, error) {
	paper, err := s.repomanager.Papers(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := gate(caller, paper); err != nil {
		return nil, err
	}

	url, err := s.blob.PresignGet(ctx, paper.StorageKey)
	if err != nil {
		s.logger.Error(ctx, "blob presign failed", "paper", id, "error", err)
		return nil, common.ErrorInternal
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.repomanager.Papers(s.db).IncrementDownloads(ctx, id); err != nil {
			s.logger.Warn(ctx, "download counter increment failed", "paper", id, "error", err)
		}
	}()

	return &DownloadResult{
		URL:      url,
		Filename: downloadFilename(paper.Title, paper.Year),
	}, nil
}

// SetStatus applies a moderation decision through the status state
// machine. Illegal transitions yield ErrInvalidTransition.
func (s *PaperService) SetStatus(ctx context.Context, id string, next models.PaperStatus) (*models.PaperDetail, error) {
	if !next.IsValid() {
		return nil, common.NewValidationError(common.FieldError{Field: "status", Message: "unknown status"})
	}

	repo := s.repomanager.Papers(s.db)
	paper, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !paper.Status.CanTransitionTo(next) {
		return nil, common.ErrInvalidTransition
	}

	if err := repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	paper.Status = next
	return paper, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// downloadFilename builds a sanitized suggested filename: lowercased
// title with non-alphanumeric runs collapsed to underscores, suffixed
// with the year and a .pdf extension.
func downloadFilename(title string, year int) string {
	name := nonAlnum.ReplaceAllString(strings.ToLower(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "paper"
	}
	return name + "_" + strconv.Itoa(year) + ".pdf"
}
