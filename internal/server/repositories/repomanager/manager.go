package repomanager

import (
	"context"
	"database/sql"

	"github.com/campusvault/pyqhub/internal/dbx"
	"github.com/campusvault/pyqhub/internal/server/repositories/featurerequests"
	"github.com/campusvault/pyqhub/internal/server/repositories/papers"
	"github.com/campusvault/pyqhub/internal/server/repositories/subjects"
	"github.com/campusvault/pyqhub/internal/server/repositories/users"
)

// RepositoryManager vends per-entity repositories bound to a DBTX, so
// services can run any repository call inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Papers(db dbx.DBTX) papers.Repository
	Subjects(db dbx.DBTX) subjects.Repository
	FeatureRequests(db dbx.DBTX) featurerequests.Repository
}
