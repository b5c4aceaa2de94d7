// internal/store/store_test.go
//
// Shared sqlmock scaffolding for the store tests.  sqlmock collapses
// whitespace in executed queries, so expectations are written single-line
// through the collapse helper.

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/database"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sup := database.NewStatic(sqlx.NewDb(db, "sqlmock"))
	return New(sup, zap.NewNop().Sugar()), mock
}

var spaces = regexp.MustCompile(`\s+`)

// collapse normalizes a query the way sqlmock does before matching.
func collapse(q string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(q, " "))
}

// expectQ quotes a literal query for sqlmock's regexp matcher.
func expectQ(q string) string {
	return regexp.QuoteMeta(collapse(q))
}
