// internal/api/users.go
//
// Account and profile handlers.

package api

import (
	"net/http"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/auth"
	"github.com/saessac/soda-server/internal/nickname"
)

type registerRequest struct {
	UserID   string `json:"userid" validate:"required,min=4,max=45"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	UserID   string `json:"userid" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=1,max=45"`
	Info     *string `json:"info"`
}

type passwordRequest struct {
	Current string `json:"password" validate:"required"`
	Next    string `json:"newPassword" validate:"required,min=8"`
}

// Nickname hands out a random nickname, the same pool registration draws
// from.
func (a *API) Nickname(w http.ResponseWriter, r *http.Request) {
	a.respond(w, http.StatusOK, map[string]string{"nickname": nickname.Random()})
}

// CheckID reports whether ?userid= is still free.
func (a *API) CheckID(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userid")
	if userID == "" {
		a.fail(w, r, apperr.E(apperr.InvalidInput, "userid parameter is required"))
		return
	}
	free, err := a.store.CheckID(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]bool{"available": free})
}

// Register creates an account and returns the new uid.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	uid, err := a.store.Register(r.Context(), req.UserID, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]int64{"uid": uid})
}

// Login verifies credentials and issues a bearer token.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	u, err := a.store.Authenticate(r.Context(), req.UserID, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	tok, err := a.tokens.Issue(u.UID, u.UserID, u.Nickname)
	if err != nil {
		a.fail(w, r, apperr.E(apperr.Internal, "issue token", err))
		return
	}
	a.respond(w, http.StatusOK, map[string]any{
		"token":       tok,
		"userid":      u.UserID,
		"nickname":    u.Nickname,
		"userPicture": u.Picture.String,
	})
}

// Me returns the subject's profile with favorite locations.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	p, err := a.store.Profile(r.Context(), sub.UID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		a.fail(w, r, apperr.E(apperr.NotFound, "user does not exist"))
		return
	}
	a.respond(w, http.StatusOK, map[string]any{
		"uid":               p.UID,
		"userid":            p.UserID,
		"nickname":          p.Nickname,
		"info":              p.Info.String,
		"userPicture":       p.Picture.String,
		"favoriteLocations": p.Favorites,
	})
}

// UpdateMe merges nickname and info changes into the subject's row.
func (a *API) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.store.UpdateProfile(r.Context(), sub.UID, req.Nickname, req.Info)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"updated": n})
}

// DeleteMe removes the account; favorites go first, then the Users row.
func (a *API) DeleteMe(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	res, err := a.store.DeleteUser(r.Context(), sub.UID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"deleted": res})
}

// UpdatePassword replaces the password after checking the current one.
func (a *API) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	var req passwordRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.store.UpdatePassword(r.Context(), sub.UID, req.Current, req.Next); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]bool{"updated": true})
}

// UploadPicture stores a multipart profile picture, updates the row, and
// unlinks the previous file.  The row update comes before the unlink, so a
// failed unlink leaves at worst a stray file, never a dangling path.
func (a *API) UploadPicture(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())

	file, _, err := r.FormFile("img")
	if err != nil {
		a.fail(w, r, apperr.E(apperr.InvalidInput, "img file part is required", err))
		return
	}
	defer file.Close()

	rel, err := a.pictures.Save(file)
	if err != nil {
		a.fail(w, r, apperr.E(apperr.Internal, "store picture", err))
		return
	}
	old, err := a.store.SetPicture(r.Context(), sub.UID, rel)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.pictures.Remove(old); err != nil {
		a.log.Warnw("remove previous picture", "path", old, "error", err)
	}
	a.respond(w, http.StatusOK, map[string]string{"userPicture": rel})
}

// ResetPicture points the subject back at the default picture.
func (a *API) ResetPicture(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())

	old, err := a.store.SetPicture(r.Context(), sub.UID, a.pictures.Default)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.pictures.Remove(old); err != nil {
		a.log.Warnw("remove previous picture", "path", old, "error", err)
	}
	a.respond(w, http.StatusOK, map[string]string{"userPicture": a.pictures.Default})
}

// ListUsers returns the public roster.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"uid":         u.UID,
			"userid":      u.UserID,
			"nickname":    u.Nickname,
			"info":        u.Info.String,
			"userPicture": u.Picture.String,
		})
	}
	a.respond(w, http.StatusOK, map[string]any{"users": out})
}

// MyTopics lists the topics authored by the subject.
func (a *API) MyTopics(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	topics, err := a.store.TopicsByUser(r.Context(), sub.UID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"topics": topicsJSON(topics)})
}

// CheckLogin is the token probe: it echoes the verified subject.
func (a *API) CheckLogin(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	a.respond(w, http.StatusOK, map[string]any{
		"uid":      sub.UID,
		"userid":   sub.UserID,
		"nickname": sub.Nickname,
	})
}
