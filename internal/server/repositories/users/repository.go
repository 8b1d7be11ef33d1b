package users

import (
	"context"
	"time"

	"github.com/campusvault/pyqhub/internal/server/models"
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateName(ctx context.Context, id string, name string) error
	TouchLastLogin(ctx context.Context, id string) error
	SetResetCode(ctx context.Context, id string, code string, expires time.Time) error
	// ConsumeResetCode clears the reset fields and writes the new password
	// hash in one statement.
	ConsumeResetCode(ctx context.Context, id string, passwordHash string) error
}
