// Package notify abstracts outbound delivery of password-reset codes.
// Delivery is an external collaborator; the server only hands over the code.
package notify

import (
	"context"

	"github.com/campusvault/pyqhub/internal/logging"
)

// Notifier delivers a reset code to a user out of band.
type Notifier interface {
	SendResetCode(ctx context.Context, email string, code string) error
}

// LogNotifier writes codes to the log instead of sending them.
// Development use only.
type LogNotifier struct {
	logger logging.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

// SendResetCode logs the code instead of delivering it.
func (n *LogNotifier) SendResetCode(ctx context.Context, email string, code string) error {
	n.logger.Info(ctx, "password reset code issued", "email", email, "code", code)
	return nil
}
