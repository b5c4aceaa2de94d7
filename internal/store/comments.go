// internal/store/comments.go
//
// topicComents table operations.  Comment listing reuses the query builder
// with the topic id as a fixed, allow-listed predicate so sort and
// pagination go through the same code path as the topic list.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/query"
)

// Comment is a topicComents row joined with its author.
type Comment struct {
	TCID      int64          `db:"tcid" json:"tcid"`
	Text      string         `db:"topicComent" json:"topicComment"`
	TID       int64          `db:"tid" json:"tid"`
	AuthorID  sql.NullString `db:"userID" json:"-"`
	Nickname  sql.NullString `db:"nickName" json:"-"`
	AuthorPic sql.NullString `db:"userPicture" json:"-"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

const commentJoins = ` FROM topicComents
	LEFT JOIN Topic ON topicComents.Topic_tid = Topic.tid
	LEFT JOIN Users ON topicComents.Users_uid = Users.uid`

var commentList = &query.Builder{
	Base: `SELECT tcid, topicComent, tid, userID, nickName, userPicture,
	topicComents.created_at, topicComents.updated_at` + commentJoins,
	CountBase: `SELECT COUNT(*)` + commentJoins,
	ID:        "topicComents.tcid",
	Allowed: map[string]string{
		"topic": "Topic_tid",
	},
}

// CreateComment inserts a comment by uid under topic tid.  A vanished topic
// surfaces as NotFound through the foreign-key error mapping.
func (s *Store) CreateComment(ctx context.Context, tid, uid int64, text string) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO topicComents (topicComent, Topic_tid, Users_uid) VALUES (?, ?, ?)`,
		text, tid, uid)
	if err != nil {
		return 0, s.wrap(err, "insert comment")
	}
	tcid, _ := res.LastInsertId()
	return tcid, nil
}

// withTopic pins the topic predicate onto caller criteria.
func withTopic(c query.Criteria, tid int64) query.Criteria {
	if c.Filters == nil {
		c.Filters = make(map[string]string, 1)
	}
	c.Filters["topic"] = strconv.FormatInt(tid, 10)
	return c
}

// Comments lists a topic's comments with the caller's sort and pagination.
func (s *Store) Comments(ctx context.Context, tid int64, c query.Criteria) ([]Comment, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	sqlText, args := commentList.Select(withTopic(c, tid))
	comments := []Comment{}
	if err := db.SelectContext(ctx, &comments, sqlText, args...); err != nil {
		return nil, s.wrap(err, "list comments")
	}
	return comments, nil
}

// CountComments returns the topic's total comment count.
func (s *Store) CountComments(ctx context.Context, tid int64) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	sqlText, args := commentList.Count(withTopic(query.Criteria{}, tid))
	var n int64
	if err := db.GetContext(ctx, &n, sqlText, args...); err != nil {
		return 0, s.wrap(err, "count comments")
	}
	return n, nil
}

// DeleteComment removes one comment after verifying the requester wrote it.
// The legacy endpoint deleted any comment unauthenticated; ownership is now
// required.
func (s *Store) DeleteComment(ctx context.Context, tcid, requester int64) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	var owner int64
	err = db.GetContext(ctx, &owner,
		`SELECT Users_uid FROM topicComents WHERE tcid = ?`, tcid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.E(apperr.Forbidden, "comment is not owned by the requester")
	}
	if err != nil {
		return 0, s.wrap(err, "select comment owner")
	}
	if owner != requester {
		return 0, apperr.E(apperr.Forbidden, "comment is not owned by the requester")
	}

	res, err := db.ExecContext(ctx,
		`DELETE FROM topicComents WHERE tcid = ?`, tcid)
	if err != nil {
		return 0, s.wrap(err, "delete comment")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
