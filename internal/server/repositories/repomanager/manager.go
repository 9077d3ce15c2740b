package repomanager

import (
	"context"
	"database/sql"

	"github.com/mihhailt/telebridge/internal/dbx"
	"github.com/mihhailt/telebridge/internal/server/repositories/messages"
	"github.com/mihhailt/telebridge/internal/server/repositories/refreshtokens"
	"github.com/mihhailt/telebridge/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a connection or
// transaction handle, so services can run multi-step writes through
// dbx.WithTx with the same repository code.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Messages(db dbx.DBTX) messages.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
