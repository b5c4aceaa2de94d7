// internal/store/comments_test.go

package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/query"
)

func TestCommentsPinTopicPredicate(t *testing.T) {
	s, mock := newTestStore(t)

	c := query.Criteria{Sort: query.Desc, Limit: 5}
	wantSQL, _ := commentList.Select(withTopic(c, 12))

	now := time.Now()
	mock.ExpectQuery(expectQ(wantSQL)).
		WithArgs("12", 5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"tcid", "topicComent", "tid", "userID", "nickName", "userPicture", "created_at", "updated_at"}).
			AddRow(int64(9), "재밌겠다", int64(12), "hana", "기쁜 쿼카", nil, now, now))

	comments, err := s.Comments(context.Background(), 12, c)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 1 || comments[0].TCID != 9 || comments[0].TID != 12 {
		t.Fatalf("comments = %+v", comments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreateCommentMissingTopic(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(expectQ(`INSERT INTO topicComents (topicComent, Topic_tid, Users_uid) VALUES (?, ?, ?)`)).
		WithArgs("text", int64(404), int64(7)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})

	_, err := s.CreateComment(context.Background(), 404, 7, "text")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestDeleteCommentOwnership(t *testing.T) {
	s, mock := newTestStore(t)

	ownerSel := expectQ(`SELECT Users_uid FROM topicComents WHERE tcid = ?`)

	mock.ExpectQuery(ownerSel).WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"Users_uid"}).AddRow(int64(42)))
	if _, err := s.DeleteComment(context.Background(), 9, 7); !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("foreign comment err = %v, want Forbidden", err)
	}

	mock.ExpectQuery(ownerSel).WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"Users_uid"}).AddRow(int64(7)))
	mock.ExpectExec(expectQ(`DELETE FROM topicComents WHERE tcid = ?`)).
		WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.DeleteComment(context.Background(), 9, 7)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if n != 1 {
		t.Fatalf("affected = %d, want 1", n)
	}
}
