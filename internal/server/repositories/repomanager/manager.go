package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkrasnov/flashread/internal/dbx"
	"github.com/dkrasnov/flashread/internal/server/repositories/documents"
	"github.com/dkrasnov/flashread/internal/server/repositories/refreshtokens"
	"github.com/dkrasnov/flashread/internal/server/repositories/stats"
	"github.com/dkrasnov/flashread/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
	Stats(db dbx.DBTX) stats.Repository
}
