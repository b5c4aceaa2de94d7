// internal/store/cascade.go
//
// Two-phase cascading delete.
//
// Context
// -------
// The schema has no ON DELETE CASCADE and the design assumes no
// multi-statement transaction, so a parent and its dependents are removed as
// an explicit sequence: children first, then the parent, with the affected
// row count of each phase recorded.  If the child phase fails the parent is
// never touched.  If the parent phase fails after the children are gone the
// store is inconsistent; that asymmetry is logged for the operator, counted,
// and surfaced to the caller as a PartialDeleteError instead of being
// swallowed.
package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/saessac/soda-server/internal/metrics"
)

// CascadeResult reports affected rows per phase of a cascading delete.
type CascadeResult struct {
	Children int64 `json:"children"`
	Parent   int64 `json:"parent"`
}

// PartialDeleteError marks the children-gone-parent-present outcome.  The
// embedded result shows how far the cascade got.
type PartialDeleteError struct {
	Result CascadeResult
	Err    error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("cascade incomplete: %d child rows deleted, parent delete failed: %v",
		e.Result.Children, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// step is one DELETE statement of a cascade.
type step struct {
	query string
	args  []any
}

// cascade runs the child step, then the parent step.  Callers perform any
// ownership check before invoking it.
func (s *Store) cascade(ctx context.Context, db *sqlx.DB, entity string, child, parent step) (CascadeResult, error) {
	var res CascadeResult

	childRes, err := db.ExecContext(ctx, child.query, child.args...)
	if err != nil {
		return res, s.wrap(err, "delete "+entity+" children")
	}
	res.Children, _ = childRes.RowsAffected()

	parentRes, err := db.ExecContext(ctx, parent.query, parent.args...)
	if err != nil {
		s.log.Errorw("cascade delete left orphaned state",
			"entity", entity,
			"children_deleted", res.Children,
			"err", err,
		)
		metrics.CascadeInconsistenciesTotal.Inc()
		return res, &PartialDeleteError{Result: res, Err: s.wrap(err, "delete "+entity)}
	}
	res.Parent, _ = parentRes.RowsAffected()
	return res, nil
}
