// Package httpapi is the HTTP transport: routing, request decoding,
// authentication middleware, and the error-to-status mapping. It holds no
// business rules; those live in the services layer.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/config"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/services"
)

// Server wires services into an http.Handler.
type Server struct {
	logger   logging.Logger
	users    *services.UserService
	papers   *services.PaperService
	subjects *services.SubjectService
	features *services.FeatureRequestService

	jwtSecret      []byte
	maxUploadBytes int64
	allowedOrigins []string
	limiter        *rateLimiter
}

// NewServer constructs a Server. redisClient may be nil; the rate limiter
// then lets everything through.
func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	users *services.UserService,
	papers *services.PaperService,
	subjects *services.SubjectService,
	features *services.FeatureRequestService,
	redisClient *redis.Client,
) *Server {
	return &Server{
		logger:         logger.With("module", "httpapi"),
		users:          users,
		papers:         papers,
		subjects:       subjects,
		features:       features,
		jwtSecret:      []byte(cfg.SecretKey),
		maxUploadBytes: cfg.MaxUploadBytes,
		allowedOrigins: cfg.AllowedOrigins,
		limiter:        newRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow, logger),
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.allowedOrigins))

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.middleware)
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/send-reset-code", s.handleSendResetCode)
		})
		r.Post("/reset-password", s.handleResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)
		})
	})

	r.Route("/questionpapers", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			r.Get("/", s.handleListPapers)
			r.Get("/{id}", s.handleGetPaper)
			r.Get("/{id}/download", s.handleDownloadPaper)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/upload", s.handleUploadPaper)
			r.Get("/mine", s.handleMyPapers)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Patch("/{id}/status", s.handleSetPaperStatus)
		})
	})

	r.Get("/subjects", s.handleListSubjects)

	r.Route("/feature-requests", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", s.handleCreateFeatureRequest)
		r.Get("/mine", s.handleMyFeatureRequests)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// studentJSON is the profile subset returned by the auth endpoints.
type studentJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RollNo string `json:"rollno"`
}

func toStudentJSON(u *models.User) studentJSON {
	return studentJSON{ID: u.ID, Name: u.Name, Email: u.Email, RollNo: u.RollNo}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		RollNo          string `json:"rollno"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, common.NewValidationError(common.FieldError{Field: "confirmPassword", Message: "passwords do not match"}))
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		RollNo:   req.RollNo,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"student": toStudentJSON(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"student": toStudentJSON(user),
	})
}

func (s *Server) handleSendResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.users.SendResetCode(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	// The response is identical whether or not the email exists.
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the account exists, a reset code has been sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		ResetCode   string `json:"resetCode"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.users.ResetPassword(r.Context(), req.Email, req.ResetCode, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	user, err := s.users.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": toStudentJSON(user)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims := claimsFrom(r.Context())
	user, err := s.users.UpdateProfile(r.Context(), claims.UserID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student": toStudentJSON(user)})
}

// paperJSON is the wire shape for a paper with joined display fields.
type paperJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Branch      string    `json:"branch"`
	Semester    int       `json:"semester"`
	Subject     string    `json:"subject"`
	SubjectName string    `json:"subjectName,omitempty"`
	SubjectCode string    `json:"subjectCode,omitempty"`
	Year        int       `json:"year"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"fileUrl"`
	Uploader    string    `json:"uploader,omitempty"`
	UploaderNo  string    `json:"uploaderRollno,omitempty"`
	Status      string    `json:"status"`
	Downloads   int64     `json:"downloads"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toPaperJSON(p *models.PaperDetail) paperJSON {
	return paperJSON{
		ID:          p.ID,
		Title:       p.Title,
		Branch:      string(p.Branch),
		Semester:    p.Semester,
		Subject:     p.SubjectID,
		SubjectName: p.SubjectName,
		SubjectCode: p.SubjectCode,
		Year:        p.Year,
		Type:        string(p.Type),
		Description: p.Description,
		FileURL:     p.FileURL,
		Uploader:    p.UploaderName,
		UploaderNo:  p.UploaderRollNo,
		Status:      string(p.Status),
		Downloads:   p.Downloads,
		CreatedAt:   p.CreatedAt,
	}
}

func (s *Server) handleUploadPaper(w http.ResponseWriter, r *http.Request) {
	// Cap the whole request body; the form-field overhead rides on top of
	// the file budget.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, common.ErrPayloadTooLarge)
			return
		}
		writeError(w, common.NewValidationError(common.FieldError{Field: "body", Message: "must be a multipart form"}))
		return
	}

	in := services.UploadInput{
		Title:       r.FormValue("title"),
		Branch:      r.FormValue("branch"),
		Semester:    r.FormValue("semester"),
		Subject:     r.FormValue("subject"),
		Year:        r.FormValue("year"),
		Type:        r.FormValue("type"),
		Description: r.FormValue("description"),
	}

	if file, header, err := r.FormFile("pdf"); err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			writeError(w, common.ErrorInternal)
			return
		}
		in.FileName = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
		in.Data = data
	}

	claims := claimsFrom(r.Context())
	paper, err := s.papers.Upload(r.Context(), claims.UserID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     paper.ID,
		"title":  paper.Title,
		"status": string(paper.Status),
	})
}

// queryInt parses an integer query value, treating absent or malformed
// values as zero.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.papers.List(r.Context(), callerFrom(r.Context()), services.ListQuery{
		Branch:   q.Get("branch"),
		Semester: queryInt(r, "semester"),
		Subject:  q.Get("subject"),
		Year:     queryInt(r, "year"),
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]paperJSON, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toPaperJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":          len(items),
		"totalCount":     page.TotalCount,
		"currentPage":    page.Page,
		"totalPages":     page.TotalPages(),
		"questionPapers": items,
	})
}

func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := s.papers.Get(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaperJSON(paper))
}

func (s *Server) handleDownloadPaper(w http.ResponseWriter, r *http.Request) {
	res, err := s.papers.Download(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"downloadUrl": res.URL,
		"filename":    res.Filename,
	})
}

func (s *Server) handleMyPapers(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	papers, err := s.papers.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]paperJSON, 0, len(papers))
	for _, p := range papers {
		items = append(items, toPaperJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"questionPapers": items})
}

func (s *Server) handleSetPaperStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	paper, err := s.papers.SetStatus(r.Context(), chi.URLParam(r, "id"), models.PaperStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaperJSON(paper))
}

type subjectJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Branch        string `json:"branch"`
	Semester      int    `json:"semester"`
	Credits       int    `json:"credits,omitempty"`
	PYQsAvailable int64  `json:"pyqs_available"`
	Downloads     int64  `json:"downloads"`
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	page, err := s.subjects.List(r.Context(), services.SubjectQuery{
		Branch:   r.URL.Query().Get("branch"),
		Semester: queryInt(r, "semester"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]subjectJSON, 0, len(page.Items))
	for _, sub := range page.Items {
		items = append(items, subjectJSON{
			ID:            sub.ID,
			Name:          sub.Name,
			Code:          sub.Code,
			Branch:        string(sub.Branch),
			Semester:      sub.Semester,
			Credits:       sub.Credits,
			PYQsAvailable: sub.PYQsAvailable,
			Downloads:     sub.Downloads,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(items),
		"totalCount":  page.TotalCount,
		"currentPage": page.Page,
		"totalPages":  page.TotalPages(),
		"subjects":    items,
	})
}

type featureRequestJSON struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	FeatureTitle string    `json:"featureTitle"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toFeatureRequestJSON(fr *models.FeatureRequest) featureRequestJSON {
	return featureRequestJSON{
		ID:           fr.ID,
		Category:     fr.Category,
		FeatureTitle: fr.Title,
		Description:  fr.Description,
		Status:       string(fr.Status),
		CreatedAt:    fr.CreatedAt,
	}
}

func (s *Server) handleCreateFeatureRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category     string `json:"category"`
		FeatureTitle string `json:"featureTitle"`
		Description  string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	claims := claimsFrom(r.Context())
	fr, err := s.features.Create(r.Context(), claims.UserID, services.FeatureRequestInput{
		Category:    req.Category,
		Title:       req.FeatureTitle,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeatureRequestJSON(fr))
}

func (s *Server) handleMyFeatureRequests(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	list, err := s.features.ListMine(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]featureRequestJSON, 0, len(list))
	for _, fr := range list {
		items = append(items, toFeatureRequestJSON(fr))
	}
	writeJSON(w, http.StatusOK, map[string]any{"featureRequests": items})
}
