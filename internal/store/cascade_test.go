// internal/store/cascade_test.go
//
// Cascading-delete properties: ownership gates both phases, the parent is
// never touched after a child failure, and a failed parent phase surfaces
// as a partial-delete error instead of vanishing.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/saessac/soda-server/internal/apperr"
)

const (
	ownerQ   = `SELECT Users_uid FROM Topic WHERE tid = ?`
	childQ   = `DELETE FROM topicComents WHERE Topic_tid = ?`
	parentQ  = `DELETE FROM Topic WHERE tid = ?`
	ownerRow = "Users_uid"
)

func TestDeleteTopicCascades(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(expectQ(ownerQ)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{ownerRow}).AddRow(int64(42)))
	mock.ExpectExec(expectQ(childQ)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(expectQ(parentQ)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := s.DeleteTopic(context.Background(), 5, 42)
	if err != nil {
		t.Fatalf("DeleteTopic: %v", err)
	}
	if res.Children != 3 || res.Parent != 1 {
		t.Fatalf("result = %+v, want children=3 parent=1", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteTopicForeignOwnerUntouched(t *testing.T) {
	s, mock := newTestStore(t)

	// Owner is 42; requester is 7.  No DELETE may run.
	mock.ExpectQuery(expectQ(ownerQ)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{ownerRow}).AddRow(int64(42)))

	_, err := s.DeleteTopic(context.Background(), 5, 7)
	if !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("deletes ran on ownership mismatch: %v", err)
	}
}

func TestDeleteTopicMissingRowIsForbidden(t *testing.T) {
	s, mock := newTestStore(t)

	// Missing topic must look the same as a foreign one.
	mock.ExpectQuery(expectQ(ownerQ)).WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{ownerRow}))

	_, err := s.DeleteTopic(context.Background(), 999, 7)
	if !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
}

func TestChildFailureStopsParent(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(expectQ(ownerQ)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{ownerRow}).AddRow(int64(42)))
	mock.ExpectExec(expectQ(childQ)).WithArgs(int64(5)).
		WillReturnError(errors.New("lock wait timeout"))

	_, err := s.DeleteTopic(context.Background(), 5, 42)
	if err == nil {
		t.Fatal("child failure not surfaced")
	}
	var partial *PartialDeleteError
	if errors.As(err, &partial) {
		t.Fatal("child failure misreported as partial delete")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("parent delete ran after child failure: %v", err)
	}
}

func TestParentFailureReportedAsPartial(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(expectQ(ownerQ)).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{ownerRow}).AddRow(int64(42)))
	mock.ExpectExec(expectQ(childQ)).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(expectQ(parentQ)).WithArgs(int64(5)).
		WillReturnError(errors.New("server has gone away"))

	_, err := s.DeleteTopic(context.Background(), 5, 42)

	var partial *PartialDeleteError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialDeleteError", err)
	}
	if partial.Result.Children != 4 || partial.Result.Parent != 0 {
		t.Fatalf("partial result = %+v", partial.Result)
	}
}

func TestDeleteUserCascadesFavorites(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(expectQ(`DELETE FROM favoritLocation WHERE Users_uid = ?`)).
		WithArgs(int64(42)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(expectQ(`DELETE FROM Users WHERE uid = ?`)).
		WithArgs(int64(42)).WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := s.DeleteUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if res.Children != 2 || res.Parent != 1 {
		t.Fatalf("result = %+v", res)
	}
}
