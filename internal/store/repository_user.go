package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-trace-keeper/internal/logger"
	"github.com/MKhiriev/go-trace-keeper/internal/sqltrace"
	"github.com/MKhiriev/go-trace-keeper/models"
)

var userColumns = []string{"user_id", "login", "name", "password_hash", "created_at"}

// userRepository is the SQL implementation of [UserRepository].
//
// All methods obtain a context-scoped logger via [logger.FromContextOr] so
// that repository messages carry the trace id of the request.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by db.
func NewUserRepository(db *DB, log *logger.Logger) UserRepository {
	log.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: log,
	}
}

// CreateUser inserts user and returns it with the store-assigned fields.
//
// Error handling:
//   - unique violation → [ErrLoginAlreadyExists].
//   - any other driver error → wrapped [ErrExecutingQuery].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContextOr(ctx, r.logger)

	query, args, err := r.db.builder.
		Insert(user.TableName()).
		Columns("login", "name", "password_hash").
		Values(user.Login, user.Name, user.PasswordHash).
		Suffix("RETURNING user_id, login, name, password_hash, created_at").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	ctx = sqltrace.WithStatementID(ctx, "users.create")
	row := r.db.QueryRowContext(ctx, query, args...)

	var created models.User
	if err = row.Scan(&created.UserID, &created.Login, &created.Name, &created.PasswordHash, timestamp{&created.CreatedAt}); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error creating user")
		return models.User{}, r.mapError(err)
	}

	return created, nil
}

// FindUserByLogin retrieves the user with the given login.
//
// Error handling:
//   - no rows → [ErrNoUserWasFound].
//   - any other driver error → wrapped [ErrExecutingQuery].
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	log := logger.FromContextOr(ctx, r.logger)

	query, args, err := r.db.builder.
		Select(userColumns...).
		From(models.User{}.TableName()).
		Where(sq.Eq{"login": login}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	ctx = sqltrace.WithStatementID(ctx, "users.findByLogin")
	row := r.db.QueryRowContext(ctx, query, args...)

	var found models.User
	if err = row.Scan(&found.UserID, &found.Login, &found.Name, &found.PasswordHash, timestamp{&found.CreatedAt}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("error finding user")
		return models.User{}, r.mapError(err)
	}

	return found, nil
}

func (r *userRepository) mapError(err error) error {
	switch r.db.errorClassificator.Classify(err) {
	case Conflict:
		return ErrLoginAlreadyExists
	case Retryable:
		return fmt.Errorf("%w (retryable): %w", ErrExecutingQuery, err)
	}
	return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
}

// timestamp scans a column that drivers return either as time.Time or as
// text, as sqlite3 does for RETURNING clauses.
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ts.t = time.Time{}
		return nil
	case time.Time:
		*ts.t = v
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	}
	return fmt.Errorf("%w: unsupported timestamp type %T", ErrScanningRow, src)
}

func (ts timestamp) parse(s string) error {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("%w: cannot parse timestamp %q", ErrScanningRow, s)
}
