package repomanager

import (
	"context"
	"database/sql"

	"github.com/dverna/trasferte/internal/dbx"
	"github.com/dverna/trasferte/internal/server/repositories/expenses"
	"github.com/dverna/trasferte/internal/server/repositories/profiles"
	"github.com/dverna/trasferte/internal/server/repositories/refreshtokens"
	"github.com/dverna/trasferte/internal/server/repositories/trips"
	"github.com/dverna/trasferte/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Trips(db dbx.DBTX) trips.Repository
	Expenses(db dbx.DBTX) expenses.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
