package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	postgresMaxConnLifetime = time.Hour
	postgresMaxConnIdleTime = 5 * time.Minute
)

type logQueryHook struct {
	log logger.Logger
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	data := logger.Data{"duration": time.Since(event.StartTime).String()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.log.Debug(event.Query, data)
}

// New opens the connection pool shared by every service. PostgreSQL is used
// when DatabaseURL is set, SQLite otherwise. Connectivity is verified before
// returning; later broken connections are replaced by the pool on next use.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	var err error
	if cfg.UsesPostgres() {
		db, err = openPostgres(cfg)
	} else {
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseDebug {
		db.AddQueryHook(&logQueryHook{logger.NewWithLevel("debug")})
	}

	if err := waitForConnection(db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	if !cfg.UsesPostgres() && !isMemoryDatabase(cfg.DatabaseFilePath) {
		// WAL lets readers proceed while the single writer holds the lock.
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "failed to enable WAL mode")
		}
	}

	return db, nil
}

func openSQLite(cfg *config.Config) (*bun.DB, error) {
	drv := sqliteshim.Driver()

	var connector driver.Connector
	if drvCtx, ok := drv.(driver.DriverContext); ok {
		c, err := drvCtx.OpenConnector(cfg.DatabaseFilePath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		connector = c
	} else {
		connector = newDriverConnector(drv, cfg.DatabaseFilePath)
	}

	// Pragmas are per connection, so they run every time the pool dials.
	initStatements := []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.DatabaseBusyTimeout.Milliseconds()),
	}
	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries, initStatements...))

	// SQLite allows a single writer. One open connection serializes callers
	// and keeps an in-memory database alive for the life of the pool.
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func openPostgres(cfg *config.Config) (*bun.DB, error) {
	pgcfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database_url")
	}
	if cfg.DatabaseUser != "" {
		pgcfg.User = cfg.DatabaseUser
	}
	if cfg.DatabasePassword != "" {
		pgcfg.Password = cfg.DatabasePassword
	}

	sqldb := stdlib.OpenDB(*pgcfg)
	sqldb.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.DatabaseMaxOpenConns)
	sqldb.SetConnMaxLifetime(postgresMaxConnLifetime)
	sqldb.SetConnMaxIdleTime(postgresMaxConnIdleTime)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func waitForConnection(db *bun.DB, cfg *config.Config) error {
	attempts := cfg.DatabaseConnectRetryCount
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = CheckConnection(context.Background(), db)
		if err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
		}
	}
	return errors.Wrap(err, "failed to connect to database")
}

// CheckConnection reports whether the database answers a trivial query.
func CheckConnection(ctx context.Context, db bun.IDB) error {
	var one int
	err := db.NewSelect().ColumnExpr("1").Scan(ctx, &one)
	return errors.WithStack(err)
}

func isMemoryDatabase(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// IsPostgres reports whether db talks to PostgreSQL.
func IsPostgres(db bun.IDB) bool {
	return db.Dialect().Name() == dialect.PG
}
