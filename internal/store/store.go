// internal/store/store.go
//
// Shared store plumbing.
//
// Context
// -------
// One Store serves every entity.  It never holds a database handle; each
// operation borrows the current one from the Supervisor, so a reconnect
// swaps the handle out from under the stores without any coordination.
// Column and table names follow the legacy MySQL schema verbatim, including
// the misspelled `topicComents` table, so this server runs against the
// database the original service left behind.
//
// Error discipline
// ----------------
// Driver errors are classified once, in wrap(): duplicate key → Conflict,
// missing foreign row → NotFound, dead connection → Unavailable, anything
// else → Internal.  Callers above the store only ever see apperr kinds.
package store

import (
	"database/sql/driver"
	"errors"
	"io"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/database"
)

// MySQL server error numbers the store reacts to.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

// Store bundles every entity's queries behind one injected handle source.
type Store struct {
	sup *database.Supervisor
	log *zap.SugaredLogger
}

// New builds a Store on top of the supervisor.
func New(sup *database.Supervisor, log *zap.SugaredLogger) *Store {
	return &Store{sup: sup, log: log}
}

// db borrows the live handle for one call.
func (s *Store) db() (*sqlx.DB, error) {
	return s.sup.Acquire()
}

// wrap classifies a driver error into the application taxonomy.  Errors that
// already carry a kind pass through untouched.
func (s *Store) wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	var my *mysql.MySQLError
	if errors.As(err, &my) {
		switch my.Number {
		case mysqlErrDuplicateEntry:
			return apperr.E(apperr.Conflict, "duplicate entry", err)
		case mysqlErrNoReferencedRow:
			return apperr.E(apperr.NotFound, "referenced row does not exist", err)
		}
		return apperr.E(apperr.Internal, op+" failed", err)
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, io.EOF) {
		return apperr.E(apperr.Unavailable, "database connection lost", err)
	}
	return apperr.E(apperr.Internal, op+" failed", err)
}
