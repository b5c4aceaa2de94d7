// internal/store/users.go
//
// Users table operations: registration, login, profile, picture paths, and
// account deletion.  Passwords are bcrypt digests computed here, never in
// SQL; the stored value is only ever compared with
// bcrypt.CompareHashAndPassword.

package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/nickname"
)

// User is a Users row minus the password digest.
type User struct {
	UID      int64          `db:"uid" json:"uid"`
	UserID   string         `db:"userID" json:"userid"`
	Nickname string         `db:"nickName" json:"nickname"`
	Info     sql.NullString `db:"info" json:"-"`
	Picture  sql.NullString `db:"userPicture" json:"-"`
}

// FavoriteLocation is one entry of a user's favorite list.
type FavoriteLocation struct {
	LID  int64  `json:"lid"`
	Name string `json:"locationName"`
}

// Profile is the aggregate returned for GET /user.
type Profile struct {
	User
	Favorites []FavoriteLocation
}

// CheckID reports whether userID is still free.
func (s *Store) CheckID(ctx context.Context, userID string) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}

	var n int
	err = db.GetContext(ctx, &n,
		`SELECT COUNT(userID) FROM Users WHERE userID = ?`, userID)
	if err != nil {
		return false, s.wrap(err, "check user id")
	}
	return n == 0, nil
}

// Register inserts a new user with a bcrypt password digest and a random
// nickname.  A taken id yields Conflict, whether caught by the pre-check or
// by the unique index.
func (s *Store) Register(ctx context.Context, userID, password string) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	free, err := s.CheckID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !free {
		return 0, apperr.E(apperr.Conflict, "user id already taken")
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, apperr.E(apperr.Internal, "hash password", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO Users (userID, userPassword, nickName) VALUES (?, ?, ?)`,
		userID, string(digest), nickname.Random())
	if err != nil {
		// The pre-check races with concurrent registration; the unique
		// index is the authority.
		return 0, s.wrap(err, "insert user")
	}
	uid, _ := res.LastInsertId()
	return uid, nil
}

// Authenticate verifies credentials and returns the matching user.  Both a
// missing user and a wrong password produce the same Unauthorized error, so
// the response does not reveal which ids exist.
func (s *Store) Authenticate(ctx context.Context, userID, password string) (*User, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var row struct {
		User
		Digest string `db:"userPassword"`
	}
	err = db.GetContext(ctx, &row,
		`SELECT uid, userID, nickName, info, userPicture, userPassword
		   FROM Users WHERE userID = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.Unauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, s.wrap(err, "select user for login")
	}

	if bcrypt.CompareHashAndPassword([]byte(row.Digest), []byte(password)) != nil {
		return nil, apperr.E(apperr.Unauthorized, "invalid credentials")
	}
	u := row.User
	return &u, nil
}

// ByUID fetches one user.  A missing uid is a defined-empty (nil, nil)
// result, not an error; callers decide whether that is NotFound.
func (s *Store) ByUID(ctx context.Context, uid int64) (*User, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var u User
	err = db.GetContext(ctx, &u,
		`SELECT uid, userID, nickName, info, userPicture FROM Users WHERE uid = ?`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(err, "select user")
	}
	return &u, nil
}

// Profile fetches the user plus their favorite locations in one
// GROUP_CONCAT join, the query shape the legacy server used.  LEFT JOINs
// replace the legacy INNER JOINs so users without favorites still resolve.
func (s *Store) Profile(ctx context.Context, uid int64) (*Profile, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	var row struct {
		User
		LIDs  sql.NullString `db:"lids"`
		Names sql.NullString `db:"locationNames"`
	}
	err = db.GetContext(ctx, &row,
		`SELECT U.uid, U.userID, U.nickName, U.info, U.userPicture,
		        GROUP_CONCAT(L.lid) AS lids,
		        GROUP_CONCAT(L.locationName) AS locationNames
		   FROM Users AS U
		   LEFT JOIN favoritLocation AS F ON F.Users_uid = U.uid
		   LEFT JOIN Location AS L ON F.Location_lid = L.lid
		  WHERE U.uid = ?
		  GROUP BY U.uid`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap(err, "select profile")
	}

	p := &Profile{User: row.User, Favorites: pairFavorites(row.LIDs, row.Names)}
	return p, nil
}

// pairFavorites zips the two GROUP_CONCAT columns into (lid, name) pairs.
// Each column skips NULLs independently, so a favorite pointing at a row
// with a NULL name leaves the lists different lengths; only what lines up
// is paired, the rest is dropped.
func pairFavorites(lids, names sql.NullString) []FavoriteLocation {
	if !lids.Valid || lids.String == "" {
		return []FavoriteLocation{}
	}
	ids := strings.Split(lids.String, ",")
	var labels []string
	if names.Valid && names.String != "" {
		labels = strings.Split(names.String, ",")
	}

	n := len(ids)
	if len(labels) < n {
		n = len(labels)
	}
	out := make([]FavoriteLocation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FavoriteLocation{
			LID:  parseID(ids[i]),
			Name: labels[i],
		})
	}
	return out
}

// parseID converts a GROUP_CONCAT fragment to an int64, tolerating junk.
func parseID(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

// UpdateProfile merges the provided fields over the current row and writes
// the result back.  Two concurrent updates can lose one side's change; the
// legacy service had the same window and nothing downstream depends on
// stronger semantics.
func (s *Store) UpdateProfile(ctx context.Context, uid int64, nick, info *string) (int64, error) {
	db, err := s.db()
	if err != nil {
		return 0, err
	}

	cur, err := s.ByUID(ctx, uid)
	if err != nil {
		return 0, err
	}
	if cur == nil {
		return 0, apperr.E(apperr.NotFound, "user does not exist")
	}

	newNick := cur.Nickname
	if nick != nil {
		newNick = *nick
	}
	newInfo := cur.Info.String
	if info != nil {
		newInfo = *info
	}

	res, err := db.ExecContext(ctx,
		`UPDATE Users SET nickName = ?, info = ? WHERE uid = ?`,
		newNick, newInfo, uid)
	if err != nil {
		return 0, s.wrap(err, "update user")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpdatePassword replaces the digest after verifying the current password.
func (s *Store) UpdatePassword(ctx context.Context, uid int64, current, next string) error {
	db, err := s.db()
	if err != nil {
		return err
	}

	var digest string
	err = db.GetContext(ctx, &digest,
		`SELECT userPassword FROM Users WHERE uid = ?`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.NotFound, "user does not exist")
	}
	if err != nil {
		return s.wrap(err, "select password digest")
	}

	if bcrypt.CompareHashAndPassword([]byte(digest), []byte(current)) != nil {
		return apperr.E(apperr.Forbidden, "current password does not match")
	}

	newDigest, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.E(apperr.Internal, "hash password", err)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE Users SET userPassword = ? WHERE uid = ?`, string(newDigest), uid)
	return s.wrap(err, "update password")
}

// SetPicture stores the new picture path and returns the previous one so the
// caller can unlink the old file.
func (s *Store) SetPicture(ctx context.Context, uid int64, path string) (string, error) {
	db, err := s.db()
	if err != nil {
		return "", err
	}

	var old sql.NullString
	err = db.GetContext(ctx, &old,
		`SELECT userPicture FROM Users WHERE uid = ?`, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.E(apperr.NotFound, "user does not exist")
	}
	if err != nil {
		return "", s.wrap(err, "select picture")
	}

	_, err = db.ExecContext(ctx,
		`UPDATE Users SET userPicture = ? WHERE uid = ?`, path, uid)
	if err != nil {
		return "", s.wrap(err, "update picture")
	}
	return old.String, nil
}

// List returns the public roster.
func (s *Store) List(ctx context.Context) ([]User, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}

	users := []User{}
	err = db.SelectContext(ctx, &users,
		`SELECT uid, userID, nickName, info, userPicture FROM Users`)
	if err != nil {
		return nil, s.wrap(err, "list users")
	}
	return users, nil
}

// DeleteUser removes the account and its favorite rows as a two-phase
// cascade: favorites first, then the Users row.
func (s *Store) DeleteUser(ctx context.Context, uid int64) (CascadeResult, error) {
	db, err := s.db()
	if err != nil {
		return CascadeResult{}, err
	}

	return s.cascade(ctx, db, "user",
		step{`DELETE FROM favoritLocation WHERE Users_uid = ?`, []any{uid}},
		step{`DELETE FROM Users WHERE uid = ?`, []any{uid}},
	)
}
