package migrations

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	err := migrator.Init(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// ddl fills in the column types that differ between SQLite and PostgreSQL.
// $PK is an auto-incrementing integer primary key.
func ddl(db *bun.DB, query string) string {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if database.IsPostgres(db) {
		pk = "BIGSERIAL PRIMARY KEY"
	}
	return strings.ReplaceAll(query, "$PK", pk)
}

// execAll runs each statement in order and stops at the first failure.
func execAll(ctx context.Context, db *bun.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, ddl(db, stmt)); err != nil {
			return errors.Wrapf(err, "failed to run %q", firstLine(stmt))
		}
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
