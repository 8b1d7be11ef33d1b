// Package repotest provides in-memory repository fakes for service and
// transport tests. They honor the same sentinel-error contracts as the
// postgres implementations and are safe for concurrent use.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/dbx"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/repositories/featurerequests"
	"github.com/campusvault/pyqhub/internal/server/repositories/papers"
	"github.com/campusvault/pyqhub/internal/server/repositories/repomanager"
	"github.com/campusvault/pyqhub/internal/server/repositories/subjects"
	"github.com/campusvault/pyqhub/internal/server/repositories/users"
)

// Manager hands out the same in-memory fakes regardless of the DBTX.
type Manager struct {
	UsersRepo    *UserRepo
	PapersRepo   *PaperRepo
	SubjectsRepo *SubjectRepo
	FeaturesRepo *FeatureRepo
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

// NewManager builds a Manager with empty stores.
func NewManager() *Manager {
	return &Manager{
		UsersRepo:    &UserRepo{users: make(map[string]*models.User)},
		PapersRepo:   &PaperRepo{papers: make(map[string]*models.PaperDetail)},
		SubjectsRepo: &SubjectRepo{subjects: make(map[string]*models.Subject)},
		FeaturesRepo: &FeatureRepo{},
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *Manager) Users(dbx.DBTX) users.Repository              { return m.UsersRepo }
func (m *Manager) Papers(dbx.DBTX) papers.Repository            { return m.PapersRepo }
func (m *Manager) Subjects(dbx.DBTX) subjects.Repository        { return m.SubjectsRepo }
func (m *Manager) FeatureRequests(dbx.DBTX) featurerequests.Repository {
	return m.FeaturesRepo
}

// UserRepo is an in-memory users.Repository.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User

	CreateErr error
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	for _, u := range r.users {
		if u.Email == user.Email || u.RollNo == user.RollNo {
			return nil, common.ErrorConflict
		}
	}
	clone := *user
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepo) UpdateName(ctx context.Context, id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Name = name
	return nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (r *UserRepo) SetResetCode(ctx context.Context, id string, code string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetCode = &code
	u.ResetCodeExpires = &expires
	return nil
}

func (r *UserRepo) ConsumeResetCode(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetCode = nil
	u.ResetCodeExpires = nil
	return nil
}

// Get returns the live stored record so tests can inspect or mutate it.
func (r *UserRepo) Get(id string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

// Count reports how many users are stored.
func (r *UserRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// PaperRepo is an in-memory papers.Repository.
type PaperRepo struct {
	mu     sync.Mutex
	papers map[string]*models.PaperDetail

	CreateErr    error
	IncrementErr error
}

// Add seeds a paper, filling in ID and CreatedAt when blank, and
// returns the live stored record.
func (r *PaperRepo) Add(p *models.PaperDetail) *models.PaperDetail {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.papers[p.ID] = p
	return p
}

func (r *PaperRepo) Create(ctx context.Context, paper *models.Paper) (*models.Paper, error) {
	r.mu.Lock()
	if r.CreateErr != nil {
		r.mu.Unlock()
		return nil, r.CreateErr
	}
	r.mu.Unlock()
	detail := &models.PaperDetail{Paper: *paper}
	r.Add(detail)
	out := detail.Paper
	return &out, nil
}

func (r *PaperRepo) GetByID(ctx context.Context, id string) (*models.PaperDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.papers[id]; ok {
		out := *p
		return &out, nil
	}
	return nil, common.ErrorNotFound
}

func (r *PaperRepo) List(ctx context.Context, f papers.ListFilter) ([]*models.PaperDetail, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.PaperDetail
	for _, p := range r.papers {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.Branch != "" && string(p.Branch) != f.Branch {
			continue
		}
		if f.Semester != 0 && p.Semester != f.Semester {
			continue
		}
		if f.Subject != "" && p.SubjectID != f.Subject {
			continue
		}
		if f.Year != 0 && p.Year != f.Year {
			continue
		}
		if f.Type != "" && string(p.Type) != f.Type {
			continue
		}
		out := *p
		matched = append(matched, &out)
	}
	// The map has no stable order; sort so paging is deterministic.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	start := (f.Page - 1) * f.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *PaperRepo) ListByUploader(ctx context.Context, uploaderID string) ([]*models.PaperDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PaperDetail
	for _, p := range r.papers {
		if p.UploaderID == uploaderID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *PaperRepo) IncrementDownloads(ctx context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.IncrementErr != nil {
		return 0, r.IncrementErr
	}
	p, ok := r.papers[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	p.Downloads++
	return p.Downloads, nil
}

func (r *PaperRepo) UpdateStatus(ctx context.Context, id string, status models.PaperStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.papers[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Status = status
	return nil
}

// Get returns the live stored record so tests can inspect or mutate it.
func (r *PaperRepo) Get(id string) *models.PaperDetail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.papers[id]
}

// Downloads reads the current counter of one paper.
func (r *PaperRepo) Downloads(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.papers[id]; ok {
		return p.Downloads
	}
	return 0
}

// Count reports how many papers are stored.
func (r *PaperRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.papers)
}

// SubjectRepo is an in-memory subjects.Repository. The stats are zero
// unless tests seed papers through a PaperRepo and compute them
// elsewhere; the transport tests only assert shape.
type SubjectRepo struct {
	mu       sync.Mutex
	subjects map[string]*models.Subject
}

// Add seeds a subject, filling in the ID when blank.
func (r *SubjectRepo) Add(s *models.Subject) *models.Subject {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.subjects[s.ID] = s
	return s
}

func (r *SubjectRepo) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subjects[id]; ok {
		out := *s
		return &out, nil
	}
	return nil, common.ErrorNotFound
}

func (r *SubjectRepo) ListWithStats(ctx context.Context, f subjects.ListFilter) ([]*models.SubjectStats, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SubjectStats
	for _, s := range r.subjects {
		if f.Branch != "" && string(s.Branch) != f.Branch {
			continue
		}
		if f.Semester != 0 && s.Semester != f.Semester {
			continue
		}
		out = append(out, &models.SubjectStats{Subject: *s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// FeatureRepo is an in-memory featurerequests.Repository.
type FeatureRepo struct {
	mu       sync.Mutex
	requests []*models.FeatureRequest
}

func (r *FeatureRepo) Create(ctx context.Context, req *models.FeatureRequest) (*models.FeatureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	clone.ID = strconv.Itoa(len(r.requests) + 1)
	clone.CreatedAt = time.Now()
	r.requests = append(r.requests, &clone)
	out := clone
	return &out, nil
}

func (r *FeatureRepo) ListByRequester(ctx context.Context, requesterID string) ([]*models.FeatureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.FeatureRequest
	for _, fr := range r.requests {
		if fr.RequesterID == requesterID {
			c := *fr
			out = append(out, &c)
		}
	}
	return out, nil
}
