// internal/store/topics.go
//
// Topic table operations.  The list endpoint is the service's busiest query
// and the reason the query builder exists: the legacy server concatenated
// type, recruit, sort, limit, and offset straight into this SQL.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/query"
)

// Topic is a Topic row joined with its author and location, the row shape
// every topic read returns.
type Topic struct {
	TID          int64          `db:"tid" json:"tid"`
	Title        string         `db:"topicTitle" json:"topicTitle"`
	Contents     string         `db:"topicContents" json:"topicContents"`
	AuthorID     sql.NullString `db:"userID" json:"-"`
	AuthorNick   sql.NullString `db:"nickName" json:"-"`
	AuthorPic    sql.NullString `db:"userPicture" json:"-"`
	LID          sql.NullInt64  `db:"lid" json:"-"`
	LocationName sql.NullString `db:"locationName" json:"-"`
	Likes        sql.NullInt64  `db:"topicLike" json:"-"`
	Recruit      sql.NullString `db:"recruit" json:"-"`
	Type         sql.NullString `db:"type" json:"type"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// TopicInput carries the writable topic fields.  Nil pointers on update mean
// "keep the current value".
type TopicInput struct {
	Title    *string
	Contents *string
	Recruit  *string
	LID      *int64
	Type     *string
}

const topicColumns = `tid, topicTitle, topicContents, userID, nickName,
	Topic.created_at, Topic.updated_at, userPicture, lid, locationName,
	topicLike, recruit, type`

const topicJoins = ` FROM Topic
	LEFT JOIN Users ON Topic.Users_uid = Users.uid
	LEFT JOIN Location ON Topic.Location_lid = Location.lid`

// topicList builds the filtered, paginated list query.  Filter names map to
// qualified columns; anything else a caller sends is dropped.
var topicList = &query.Builder{
	Base:      `SELECT ` + topicColumns + topicJoins,
	CountBase: `SELECT COUNT(*)` + topicJoins,
	ID:        "tid",
	Allowed: map[string]string{
		"type":    "Topic.type",
		"recruit": "Topic.recruit",
	},
}

// CreateTopic inserts a topic owned by uid and returns the new tid.
func (s *Store) CreateTopic(ctx context.Context, uid int64, title, contents, typ string, lid *int64) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO Topic (topicTitle, topicContents, Users_uid, Location_lid, type)
		 VALUES (?, ?, ?, ?, ?)`,
		title, contents, uid, lid, typ)
	if err != nil {
		return 0, s.wrap(err, "insert topic")
	}
	tid, _ := res.LastInsertId()
	return tid, nil
}

// Topics returns the filtered, ordered, paginated list.
func (s *Store) Topics(ctx context.Context, c query.Criteria) ([]Topic, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	sqlText, args := topicList.Select(c)
	topics := []Topic{}
	if err := db.SelectContext(ctx, &topics, sqlText, args...); err != nil {
		return nil, s.wrap(err, "list topics")
	}
	return topics, nil
}

// CountTopics mirrors Topics' predicates without sort or pagination.
func (s *Store) CountTopics(ctx context.Context, c query.Criteria) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	sqlText, args := topicList.Count(c)
	var n int64
	if err := db.GetContext(ctx, &n, sqlText, args...); err != nil {
		return 0, s.wrap(err, "count topics")
	}
	return n, nil
}

// TopicByID fetches one topic.  Missing tid is (nil, nil).
func (s *Store) TopicByID(ctx context.Context, tid int64) (*Topic, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var t Topic
	err = db.GetContext(ctx, &t,
		`SELECT `+topicColumns+topicJoins+` WHERE tid = ?`, tid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(err, "select topic")
	}
	return &t, nil
}

// TopicsByUser lists the topics authored by uid.
func (s *Store) TopicsByUser(ctx context.Context, uid int64) ([]Topic, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	topics := []Topic{}
	err = db.SelectContext(ctx, &topics,
		`SELECT `+topicColumns+topicJoins+` WHERE Users_uid = ? ORDER BY tid ASC`, uid)
	if err != nil {
		return nil, s.wrap(err, "list user topics")
	}
	return topics, nil
}

// topicOwner returns the owning uid, or Forbidden when the row is missing.
// A missing row and a foreign owner are indistinguishable to the caller so
// probing cannot reveal which tids exist.
func (s *Store) topicOwner(ctx context.Context, tid, requester int64) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	var owner int64
	err = db.GetContext(ctx, &owner,
		`SELECT Users_uid FROM Topic WHERE tid = ?`, tid)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.Forbidden, "topic is not owned by the requester")
	}
	if err != nil {
		return s.wrap(err, "select topic owner")
	}
	if owner != requester {
		return apperr.E(apperr.Forbidden, "topic is not owned by the requester")
	}
	return nil
}

// UpdateTopic merges in over the current row after an ownership check.
// Same lost-update window as UpdateProfile.
func (s *Store) UpdateTopic(ctx context.Context, tid, requester int64, in TopicInput) (int64, error) {
	if err := s.topicOwner(ctx, tid, requester); err != nil {
		return 0, err
	}
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	var cur struct {
		Title    string         `db:"topicTitle"`
		Contents string         `db:"topicContents"`
		Recruit  sql.NullString `db:"recruit"`
		LID      sql.NullInt64  `db:"Location_lid"`
	}
	err = db.GetContext(ctx, &cur,
		`SELECT topicTitle, topicContents, recruit, Location_lid FROM Topic WHERE tid = ?`, tid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.E(apperr.Forbidden, "topic is not owned by the requester")
	}
	if err != nil {
		return 0, s.wrap(err, "select topic for update")
	}

	title, contents := cur.Title, cur.Contents
	recruit := cur.Recruit.String
	lid := cur.LID
	if in.Title != nil {
		title = *in.Title
	}
	if in.Contents != nil {
		contents = *in.Contents
	}
	if in.Recruit != nil {
		recruit = *in.Recruit
	}
	if in.LID != nil {
		lid = sql.NullInt64{Int64: *in.LID, Valid: true}
	}

	res, err := db.ExecContext(ctx,
		`UPDATE Topic SET topicTitle = ?, topicContents = ?, recruit = ?, Location_lid = ?
		  WHERE tid = ?`,
		title, contents, recruit, lid, tid)
	if err != nil {
		return 0, s.wrap(err, "update topic")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteTopic removes a topic and its comments as a two-phase cascade after
// verifying ownership.  On an ownership mismatch nothing is deleted.
func (s *Store) DeleteTopic(ctx context.Context, tid, requester int64) (CascadeResult, error) {
	if err := s.topicOwner(ctx, tid, requester); err != nil {
		return CascadeResult{}, err
	}
	db, err := s.db()
	if err != nil {
		return CascadeResult{}, err
	}

	return s.cascade(ctx, db, "topic",
		step{`DELETE FROM topicComents WHERE Topic_tid = ?`, []any{tid}},
		step{`DELETE FROM Topic WHERE tid = ?`, []any{tid}},
	)
}
