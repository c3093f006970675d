package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/sqltrace"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/migrations"
)

// DB is a traced database connection together with the dialect specific
// pieces the repositories need.
type DB struct {
	*sqltrace.DB
	dialect            string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Dialect returns the goose dialect of the connection.
func (db *DB) Dialect() string { return db.dialect }

// Migrate applies the embedded schema.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.Unwrap(), db.dialect)
}

// Connect opens the database named by cfg.Storage.DB.DSN. A postgres:// or
// postgresql:// DSN is opened with pgx, anything else with sqlite3.
func Connect(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger, opts ...sqltrace.Option) (*DB, error) {
	dialect, driver, err := driverFor(cfg.Storage.DB.DSN)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, cfg.Storage.DB.DSN)
	if err != nil {
		log.Err(err).Str("func", "Connect").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if dialect == migrations.DialectSQLite {
		// a single writer avoids SQLITE_BUSY on concurrent inserts
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(4)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "Connect").Msg("error connecting database (ping)")
		conn.Close()
		return nil, err
	}
	log.Info().Str("func", "Connect").Str("driver", driver).Msg("connected to database successfully")

	traced := sqltrace.New(conn, cfg.SQL, tracelog.PolicyFromConfig(cfg.Logging), log, opts...)
	return newDB(traced, dialect, log), nil
}

func newDB(traced *sqltrace.DB, dialect string, log *logger.Logger) *DB {
	db := &DB{
		DB:      traced,
		dialect: dialect,
		logger:  log,
	}
	if dialect == migrations.DialectPostgres {
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
		db.errorClassificator = NewPostgresErrorClassifier()
	} else {
		db.builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
		db.errorClassificator = NewSQLiteErrorClassifier()
	}
	return db
}

func driverFor(dsn string) (dialect, driver string, err error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("%w: empty DSN", ErrUnsupportedDSN)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return migrations.DialectPostgres, "pgx", nil
	}
	return migrations.DialectSQLite, "sqlite3", nil
}
