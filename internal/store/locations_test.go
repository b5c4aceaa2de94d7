// internal/store/locations_test.go

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/saessac/soda-server/internal/apperr"
)

func TestAddFavoriteErrorMapping(t *testing.T) {
	s, mock := newTestStore(t)

	ins := expectQ(`INSERT INTO favoritLocation (Users_uid, Location_lid) VALUES (?, ?)`)

	mock.ExpectExec(ins).WithArgs(int64(7), int64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})
	if err := s.AddFavorite(context.Background(), 7, 3); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("repeated pair err = %v, want Conflict", err)
	}

	mock.ExpectExec(ins).WithArgs(int64(7), int64(404)).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"})
	if err := s.AddFavorite(context.Background(), 7, 404); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("dangling lid err = %v, want NotFound", err)
	}

	mock.ExpectExec(ins).WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := s.AddFavorite(context.Background(), 7, 3); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
}

func TestRemoveFavoriteReportsAffected(t *testing.T) {
	s, mock := newTestStore(t)

	del := expectQ(`DELETE FROM favoritLocation WHERE Users_uid = ? AND Location_lid = ?`)

	mock.ExpectExec(del).WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := s.RemoveFavorite(context.Background(), 7, 3)
	if err != nil || n != 1 {
		t.Fatalf("RemoveFavorite = (%d, %v), want (1, nil)", n, err)
	}

	mock.ExpectExec(del).WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = s.RemoveFavorite(context.Background(), 7, 3)
	if err != nil || n != 0 {
		t.Fatalf("absent pair = (%d, %v), want (0, nil)", n, err)
	}
}

func TestLocationsOrdered(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(expectQ(`SELECT lid, locationName FROM Location ORDER BY lid ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"lid", "locationName"}).
			AddRow(int64(1), "한강공원").
			AddRow(int64(2), "남산"))

	locations, err := s.Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(locations) != 2 || locations[0].Name != "한강공원" {
		t.Fatalf("locations = %+v", locations)
	}
}

func TestCreateRecommended(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectExec(expectQ(`INSERT INTO recommended (title, location, content) VALUES (?, ?, ?)`)).
		WithArgs("러닝 코스", "반포", "야경이 좋아요").
		WillReturnResult(sqlmock.NewResult(5, 1))

	rid, err := s.CreateRecommended(context.Background(), "러닝 코스", "반포", "야경이 좋아요")
	if err != nil || rid != 5 {
		t.Fatalf("CreateRecommended = (%d, %v), want (5, nil)", rid, err)
	}
}
