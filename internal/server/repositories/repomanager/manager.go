// Package repomanager hands out repository instances bound to a database
// handle. Passing a dbx.DBTX lets a service run several repositories
// against one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkov/taskhub/internal/dbx"
	"github.com/avolkov/taskhub/internal/server/repositories/attachments"
	"github.com/avolkov/taskhub/internal/server/repositories/projects"
	"github.com/avolkov/taskhub/internal/server/repositories/tasks"
	"github.com/avolkov/taskhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
