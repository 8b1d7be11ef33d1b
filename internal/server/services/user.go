package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/logging"
	"github.com/campusvault/pyqhub/internal/server/auth"
	"github.com/campusvault/pyqhub/internal/server/config"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/notify"
	"github.com/campusvault/pyqhub/internal/server/repositories/repomanager"
	"github.com/campusvault/pyqhub/internal/server/validation"
)

// UserService provides authentication-related operations: registration,
// login, profile updates, and the password-reset flow.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    notify.Notifier
	logger      logging.Logger

	jwtSecret             []byte
	tokenValidityDuration time.Duration
	resetCodeValidity     time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, n notify.Notifier, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		notifier:              n,
		logger:                l.With("module", "users"),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		resetCodeValidity:     cfg.ResetCodeValidityDuration,
	}
}

// RegisterInput is the signup payload after transport decoding.
type RegisterInput struct {
	Name     string
	RollNo   string
	Email    string
	Password string
}

// Register creates a new student account after format and uniqueness
// checks. Duplicate rollno or email yields ErrorConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.SignupRules().Err(map[string]string{
		"rollno":   in.RollNo,
		"email":    in.Email,
		"password": in.Password,
	}); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Name:         in.Name,
		RollNo:       in.RollNo,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

// Login verifies credentials and mints a bearer token. Unknown email and
// wrong password both return ErrorUnauthorized so callers cannot
// enumerate accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	// Login bookkeeping is best-effort.
	if err := repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "failed to record last login", "user", user.ID, "error", err)
	}

	return token, user, nil
}

// GetProfile returns the caller's own account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile changes the display name.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateName(ctx, userID, name); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, userID)
}

// SendResetCode issues a 6-digit reset code with a bounded lifetime and
// hands it to the notifier. An unknown email is deliberately a silent
// no-op so the endpoint cannot be used to probe for accounts.
func (s *UserService) SendResetCode(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "reset code requested for unknown email")
			return nil
		}
		return common.ErrorInternal
	}

	code, err := common.MakeResetCode()
	if err != nil {
		return common.ErrorInternal
	}

	expires := time.Now().Add(s.resetCodeValidity)
	if err := repo.SetResetCode(ctx, user.ID, code, expires); err != nil {
		return common.ErrorInternal
	}

	if err := s.notifier.SendResetCode(ctx, user.Email, code); err != nil {
		s.logger.Error(ctx, "reset code delivery failed", "user", user.ID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// ResetPassword consumes a previously issued code. Wrong, missing, and
// expired codes all yield ErrResetCodeInvalid; success clears the code
// fields so the same code cannot be replayed.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrResetCodeInvalid
		}
		return common.ErrorInternal
	}

	if user.ResetCode == nil || user.ResetCodeExpires == nil {
		return common.ErrResetCodeInvalid
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetCode), []byte(code)) != 1 {
		return common.ErrResetCodeInvalid
	}
	if time.Now().After(*user.ResetCodeExpires) {
		return common.ErrResetCodeInvalid
	}

	if msg := validation.PasswordStrength(newPassword); msg != "" {
		return common.NewValidationError(common.FieldError{Field: "newPassword", Message: msg})
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := repo.ConsumeResetCode(ctx, user.ID, hash); err != nil {
		return common.ErrorInternal
	}
	return nil
}
