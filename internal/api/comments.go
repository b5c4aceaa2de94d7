// internal/api/comments.go
//
// Comment handlers.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saessac/soda-server/internal/auth"
	"github.com/saessac/soda-server/internal/query"
	"github.com/saessac/soda-server/internal/store"
)

type createCommentRequest struct {
	Text string `json:"topicComment" validate:"required,max=1000"`
}

func commentJSON(c store.Comment) map[string]any {
	return map[string]any{
		"tcid":         c.TCID,
		"topicComment": c.Text,
		"tid":          c.TID,
		"userID":       c.AuthorID.String,
		"nickName":     c.Nickname.String,
		"userPicture":  c.AuthorPic.String,
		"created_at":   c.CreatedAt.Format(time.RFC3339),
		"updated_at":   c.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateComment adds a comment under the topic in the path.
func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req createCommentRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	tcid, err := a.store.CreateComment(r.Context(), tid, sub.UID, req.Text)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]int64{"tcid": tcid})
}

// ListComments returns the topic's comments, paginated.
func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	c := query.FromValues(r.URL.Query())
	comments, err := a.store.Comments(r.Context(), tid, c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(comments))
	for _, cm := range comments {
		out = append(out, commentJSON(cm))
	}
	a.respond(w, http.StatusOK, map[string]any{"comments": out})
}

// CountComments returns the topic's comment total.
func (a *API) CountComments(w http.ResponseWriter, r *http.Request) {
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.store.CountComments(r.Context(), tid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"count": n})
}

// DeleteComment removes the subject's own comment.
func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	tcid, err := pathID(chi.URLParam(r, "tcid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.store.DeleteComment(r.Context(), tcid, sub.UID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"deleted": n})
}
