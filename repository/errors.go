package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sequence store failures
var (
	// ErrSerializationConflict means the allocation transaction lost a race or ran out of time.
	// Nothing was committed and the caller may retry.
	ErrSerializationConflict = errors.New("sequence store serialization conflict")

	// ErrStoreUnavailable means the backing store could not be reached or failed.
	ErrStoreUnavailable = errors.New("sequence store unavailable")
)

// Postgres SQLSTATE codes that describe a lost race rather than a broken store
var conflictSQLStates = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"23505": {}, // unique_violation
	"57014": {}, // query_canceled
}

// classifyStoreError maps a driver error onto ErrSerializationConflict or ErrStoreUnavailable.
// The original error stays in the chain.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSerializationConflict) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// context.DeadlineExceeded also satisfies net.Error, so it must be matched first
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrSerializationConflict, err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if isConflict(err) {
		return fmt.Errorf("%w: %w", ErrSerializationConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func isConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := conflictSQLStates[pgErr.Code]
		return ok
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := conflictSQLStates[string(pqErr.Code)]
		return ok
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			code := liteErr.Code()
			return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		}
	}

	return false
}

// isConnectionError reports errors that mean the store could not be reached at all
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var netErr net.Error
	return errors.As(err, &netErr) && !errors.Is(err, context.DeadlineExceeded)
}

// isUniqueViolation reports a unique index violation from any supported driver
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
