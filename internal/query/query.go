// internal/query/query.go
//
// Safe construction of filtered, sorted, paginated list queries.
//
// Context
// -------
// Every list endpoint takes the same optional criteria: filter pairs, a sort
// direction, and limit/offset.  The legacy server concatenated those values
// straight into SQL text.  Builder assembles the same shapes with two hard
// rules instead:
//
//  1. Filter *names* come only from a per-endpoint allow-list mapping the
//     API parameter to a column expression.  Unknown names are dropped.
//  2. Filter *values*, limits, and offsets are always bound parameters.
//
// Ordering is always on the entity's primary id column, so a page of results
// is deterministic; the caller only chooses the direction.  A companion
// Count query mirrors the predicates without sort or pagination, for
// total-count-for-pagination responses.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// MaxLimit caps page size regardless of what the caller asks for.
const MaxLimit = 100

// Direction is a validated ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection maps caller input to a Direction.  Anything unrecognised
// falls back to ascending, matching the legacy default of "ORDER BY tid".
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Criteria is the transient per-request record of list parameters.  Zero
// values mean "not requested".
type Criteria struct {
	Filters map[string]string
	Sort    Direction
	Limit   int
	Offset  int
}

// FromValues builds Criteria from query parameters.  filterKeys names the
// parameters that may become predicates; everything else is ignored here and
// vetted again against the Builder's allow-list.
func FromValues(v url.Values, filterKeys ...string) Criteria {
	c := Criteria{Sort: ParseDirection(v.Get("sort"))}

	for _, k := range filterKeys {
		if val := v.Get(k); val != "" {
			if c.Filters == nil {
				c.Filters = make(map[string]string, len(filterKeys))
			}
			c.Filters[k] = val
		}
	}

	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		c.Limit = n
	}
	if n, err := strconv.Atoi(v.Get("offset")); err == nil && n > 0 {
		c.Offset = n
	}
	return c
}

// Builder produces SELECT and COUNT statements for one list endpoint.
type Builder struct {
	// Base is the SELECT with its joins, no WHERE or ORDER BY.
	Base string
	// CountBase is the COUNT(*) variant with the same joins.
	CountBase string
	// ID is the fully qualified primary id column used for ordering.
	ID string
	// Allowed maps API filter names to column expressions.
	Allowed map[string]string
}

// Select returns the paginated query and its bound arguments.
func (b *Builder) Select(c Criteria) (string, []any) {
	sql, args := b.where(b.Base, c)

	dir := c.Sort
	if dir != Desc {
		dir = Asc
	}
	sql += " ORDER BY " + b.ID + " " + string(dir)

	if c.Limit > 0 {
		limit := c.Limit
		if limit > MaxLimit {
			limit = MaxLimit
		}
		sql += " LIMIT ?"
		args = append(args, limit)
		// MySQL only accepts OFFSET after LIMIT, as the legacy server relied on.
		if c.Offset > 0 {
			sql += " OFFSET ?"
			args = append(args, c.Offset)
		}
	}
	return sql, args
}

// Count returns the companion count query: same predicates, no ordering or
// pagination.
func (b *Builder) Count(c Criteria) (string, []any) {
	return b.where(b.CountBase, c)
}

// where appends allow-listed predicates to base.  Filter names are iterated
// in sorted order so the generated text is stable for caching and tests.
func (b *Builder) where(base string, c Criteria) (string, []any) {
	if len(c.Filters) == 0 {
		return base, nil
	}

	names := make([]string, 0, len(c.Filters))
	for name := range c.Filters {
		if _, ok := b.Allowed[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return base, nil
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(base)
	args := make([]any, 0, len(names))
	for i, name := range names {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(b.Allowed[name])
		sb.WriteString(" = ?")
		args = append(args, c.Filters[name])
	}
	return sb.String(), args
}
