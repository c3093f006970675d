package sqltrace

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-trace-keeper/internal/config"
	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
)

// Duration buckets of slow statements.
const (
	BucketThreshold = "threshold"
	BucketOver1s    = ">1s"
	BucketOver5s    = ">5s"
	BucketOver10s   = ">10s"
)

// Observer receives the duration of every statement.
type Observer interface {
	ObserveStatement(d time.Duration, slow bool, bucket string)
}

type statementIDKey struct{}

// WithStatementID names the statements run with ctx. Names listed in the
// excluded statement ids are executed without being logged.
func WithStatementID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, statementIDKey{}, id)
}

// StatementIDFromContext returns the name set by [WithStatementID].
func StatementIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(statementIDKey{}).(string)
	return id
}

// DB is a *sql.DB that logs and times every statement.
type DB struct {
	db        *sql.DB
	cfg       config.SQL
	sanitizer *tracelog.Sanitizer
	logger    *logger.Logger
	observer  Observer
	excluded  map[string]struct{}
	now       func() time.Time
}

// Option configures a [DB].
type Option func(*DB)

// WithObserver reports statement durations to o.
func WithObserver(o Observer) Option {
	return func(db *DB) { db.observer = o }
}

// New wraps db. Statement text and arguments are bounded by
// cfg.MaxResultLength and masked with the markers of policy.
func New(db *sql.DB, cfg config.SQL, policy tracelog.Policy, log *logger.Logger, opts ...Option) *DB {
	policy.MaxBodyLength = cfg.MaxResultLength
	policy.ShortStringLimit = cfg.MaxResultLength

	w := &DB{
		db:        db,
		cfg:       cfg,
		sanitizer: tracelog.NewSanitizer(policy),
		logger:    log,
		excluded:  make(map[string]struct{}, len(cfg.ExcludedStatementIDs)),
		now:       time.Now,
	}
	for _, id := range cfg.ExcludedStatementIDs {
		w.excluded[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Unwrap returns the underlying *sql.DB, e.g. for migrations.
func (db *DB) Unwrap() *sql.DB { return db.db }

// PingContext verifies the connection.
func (db *DB) PingContext(ctx context.Context) error { return db.db.PingContext(ctx) }

// Close closes the underlying database.
func (db *DB) Close() error { return db.db.Close() }

// ExecContext runs a statement that returns no rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := db.now()
	res, err := db.db.ExecContext(ctx, query, args...)
	db.record(ctx, query, args, time.Since(start), err, func(e *zerolog.Event) {
		if res != nil && db.cfg.ResultsShown() {
			if n, rerr := res.RowsAffected(); rerr == nil {
				e.Int64("rows_affected", n)
			}
		}
	})
	return res, err
}

// QueryContext runs a statement that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := db.now()
	rows, err := db.db.QueryContext(ctx, query, args...)
	db.record(ctx, query, args, time.Since(start), err, nil)
	return rows, err
}

// QueryRowContext runs a statement that returns at most one row. Errors are
// deferred to Scan, as with *sql.DB.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := db.now()
	row := db.db.QueryRowContext(ctx, query, args...)
	db.record(ctx, query, args, time.Since(start), row.Err(), nil)
	return row
}

func (db *DB) record(ctx context.Context, query string, args []any, d time.Duration, err error, extra func(*zerolog.Event)) {
	slow := db.cfg.SlowQueryThresholdMs > 0 && d >= db.cfg.SlowQueryThreshold()
	bucket := Bucket(d)
	if slow && bucket == "" {
		bucket = BucketThreshold
	}
	if db.observer != nil {
		db.observer.ObserveStatement(d, slow, bucket)
	}

	if !db.cfg.IsEnabled() {
		return
	}
	id := StatementIDFromContext(ctx)
	if _, ok := db.excluded[id]; ok && id != "" {
		return
	}

	log := logger.FromContextOr(ctx, db.logger)
	var e *zerolog.Event
	switch {
	case err != nil:
		e = log.Error().Err(err)
	case slow:
		e = log.Warn().Bool("slow", true).Str("bucket", bucket)
	default:
		e = log.Info()
	}

	if id != "" {
		e = e.Str("statement_id", id)
	}
	if traceID := tracelog.TraceIDFromContext(ctx); traceID != "" {
		e = e.Str("trace_id", traceID)
	}
	e = e.Str("sql", db.sanitizer.BoundBody(Normalize(query))).
		Int64("duration_ms", d.Milliseconds())
	if db.cfg.ParamsShown() && len(args) > 0 {
		e = e.Interface("params", db.params(args))
	}
	if extra != nil {
		extra(e)
	}
	e.Msg("sql statement")
}

func (db *DB) params(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		name := ""
		if na, ok := a.(sql.NamedArg); ok {
			name, a = na.Name, na.Value
		}
		out[i] = db.sanitizer.Sanitize(name, a, "")
	}
	return out
}

// Normalize collapses every run of whitespace in query to a single space.
func Normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// Bucket names the coarse duration class of a statement, or returns an
// empty string below one second.
func Bucket(d time.Duration) string {
	switch {
	case d >= 10*time.Second:
		return BucketOver10s
	case d >= 5*time.Second:
		return BucketOver5s
	case d >= time.Second:
		return BucketOver1s
	}
	return ""
}
