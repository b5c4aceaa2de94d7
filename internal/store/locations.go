// internal/store/locations.go
//
// Location, favoritLocation, and recommended table operations.  These are
// the simplest stores; they exist mostly so every handler goes through the
// same bound-parameter discipline.

package store

import (
	"context"
)

// Location is a workout place users can attach topics and favorites to.
type Location struct {
	LID  int64  `db:"lid" json:"lid"`
	Name string `db:"locationName" json:"locationName"`
}

// Recommended is one place-recommendation post.
type Recommended struct {
	RID      int64  `db:"rid" json:"rid"`
	Title    string `db:"title" json:"title"`
	Location string `db:"location" json:"location"`
	Content  string `db:"content" json:"content"`
}

// CreateLocation inserts a named place and returns its lid.
func (s *Store) CreateLocation(ctx context.Context, name string) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO Location (locationName) VALUES (?)`, name)
	if err != nil {
		return 0, s.wrap(err, "insert location")
	}
	lid, _ := res.LastInsertId()
	return lid, nil
}

// Locations lists every place.
func (s *Store) Locations(ctx context.Context) ([]Location, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	locations := []Location{}
	err = db.SelectContext(ctx, &locations,
		`SELECT lid, locationName FROM Location ORDER BY lid ASC`)
	if err != nil {
		return nil, s.wrap(err, "list locations")
	}
	return locations, nil
}

// DeleteLocation removes one place and reports the affected rows.
func (s *Store) DeleteLocation(ctx context.Context, lid int64) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`DELETE FROM Location WHERE lid = ?`, lid)
	if err != nil {
		return 0, s.wrap(err, "delete location")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// AddFavorite marks lid as a favorite of uid.  A dangling lid maps to
// NotFound, a repeated pair to Conflict, both via the driver error mapping.
func (s *Store) AddFavorite(ctx context.Context, uid, lid int64) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO favoritLocation (Users_uid, Location_lid) VALUES (?, ?)`, uid, lid)
	return s.wrap(err, "insert favorite")
}

// RemoveFavorite drops the (uid, lid) pair and reports the affected rows.
func (s *Store) RemoveFavorite(ctx context.Context, uid, lid int64) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`DELETE FROM favoritLocation WHERE Users_uid = ? AND Location_lid = ?`, uid, lid)
	if err != nil {
		return 0, s.wrap(err, "delete favorite")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CreateRecommended inserts a recommendation post.
func (s *Store) CreateRecommended(ctx context.Context, title, location, content string) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO recommended (title, location, content) VALUES (?, ?, ?)`,
		title, location, content)
	if err != nil {
		return 0, s.wrap(err, "insert recommended")
	}
	rid, _ := res.LastInsertId()
	return rid, nil
}

// RecommendedList returns every recommendation post.
func (s *Store) RecommendedList(ctx context.Context) ([]Recommended, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	posts := []Recommended{}
	err = db.SelectContext(ctx, &posts,
		`SELECT rid, title, location, content FROM recommended ORDER BY rid ASC`)
	if err != nil {
		return nil, s.wrap(err, "list recommended")
	}
	return posts, nil
}
