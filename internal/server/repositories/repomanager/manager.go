package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/reasons"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/refreshtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs on a plain connection or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Reasons(db dbx.DBTX) reasons.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
