// internal/query/query_test.go

package query

import (
	"net/url"
	"strings"
	"testing"
)

var topicBuilder = &Builder{
	Base: "SELECT tid, topicTitle FROM Topic" +
		" LEFT JOIN Users ON Topic.Users_uid = Users.uid",
	CountBase: "SELECT COUNT(*) FROM Topic" +
		" LEFT JOIN Users ON Topic.Users_uid = Users.uid",
	ID: "tid",
	Allowed: map[string]string{
		"type":    "type",
		"recruit": "recruit",
	},
}

func TestSelectNoCriteria(t *testing.T) {
	sql, args := topicBuilder.Select(Criteria{})
	if want := topicBuilder.Base + " ORDER BY tid ASC"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func TestSelectFiltersSortedAndBound(t *testing.T) {
	sql, args := topicBuilder.Select(Criteria{
		Filters: map[string]string{"recruit": "recruiting", "type": "location"},
		Sort:    Desc,
	})

	want := topicBuilder.Base +
		" WHERE recruit = ? AND type = ? ORDER BY tid DESC"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 || args[0] != "recruiting" || args[1] != "location" {
		t.Fatalf("args = %v", args)
	}
}

func TestUnknownFilterNeverReachesSQL(t *testing.T) {
	hostile := "uid=1; DROP TABLE Users--"
	sql, args := topicBuilder.Select(Criteria{
		Filters: map[string]string{hostile: "x", "type": "friend"},
	})

	if strings.Contains(sql, "DROP TABLE") {
		t.Fatalf("hostile filter name concatenated: %q", sql)
	}
	if !strings.Contains(sql, "type = ?") {
		t.Fatalf("allow-listed filter missing: %q", sql)
	}
	if len(args) != 1 || args[0] != "friend" {
		t.Fatalf("args = %v", args)
	}
}

func TestValuesAreBoundNotInterpolated(t *testing.T) {
	val := `location" OR "1"="1`
	sql, args := topicBuilder.Select(Criteria{
		Filters: map[string]string{"type": val},
	})
	if strings.Contains(sql, val) {
		t.Fatalf("filter value interpolated into SQL: %q", sql)
	}
	if len(args) != 1 || args[0] != val {
		t.Fatalf("args = %v", args)
	}
}

func TestPagination(t *testing.T) {
	sql, args := topicBuilder.Select(Criteria{Limit: 10, Offset: 20})
	if !strings.HasSuffix(sql, "ORDER BY tid ASC LIMIT ? OFFSET ?") {
		t.Fatalf("sql = %q", sql)
	}
	if len(args) != 2 || args[0] != 10 || args[1] != 20 {
		t.Fatalf("args = %v", args)
	}
}

func TestLimitClamped(t *testing.T) {
	_, args := topicBuilder.Select(Criteria{Limit: 10_000})
	if len(args) != 1 || args[0] != MaxLimit {
		t.Fatalf("args = %v, want clamped limit %d", args, MaxLimit)
	}
}

func TestOffsetWithoutLimitIgnored(t *testing.T) {
	sql, args := topicBuilder.Select(Criteria{Offset: 20})
	if strings.Contains(sql, "OFFSET") {
		t.Fatalf("OFFSET emitted without LIMIT: %q", sql)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v", args)
	}
}

func TestCountMirrorsPredicates(t *testing.T) {
	c := Criteria{
		Filters: map[string]string{"type": "location"},
		Sort:    Desc,
		Limit:   10,
		Offset:  20,
	}
	sql, args := topicBuilder.Count(c)

	if strings.Contains(sql, "ORDER BY") || strings.Contains(sql, "LIMIT") {
		t.Fatalf("count query carries sort or pagination: %q", sql)
	}
	if !strings.Contains(sql, "type = ?") || len(args) != 1 {
		t.Fatalf("count predicates wrong: %q %v", sql, args)
	}
}

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("sort", "desc")
	v.Set("limit", "25")
	v.Set("offset", "50")
	v.Set("type", "location")
	v.Set("bogus", "x")

	c := FromValues(v, "type", "recruit")
	if c.Sort != Desc || c.Limit != 25 || c.Offset != 50 {
		t.Fatalf("criteria = %+v", c)
	}
	if c.Filters["type"] != "location" {
		t.Fatalf("filters = %v", c.Filters)
	}
	if _, ok := c.Filters["bogus"]; ok {
		t.Fatal("unexpected filter key retained")
	}
	if _, ok := c.Filters["recruit"]; ok {
		t.Fatal("empty filter key retained")
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"desc": Desc, "DESC": Desc, " deSc ": Desc,
		"asc": Asc, "": Asc, "sideways": Asc,
	} {
		if got := ParseDirection(in); got != want {
			t.Errorf("ParseDirection(%q) = %q, want %q", in, got, want)
		}
	}
}
