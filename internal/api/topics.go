// internal/api/topics.go
//
// Topic handlers.  List filtering, sorting, and pagination all pass through
// the query builder; nothing from the URL reaches SQL text.

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/auth"
	"github.com/saessac/soda-server/internal/query"
	"github.com/saessac/soda-server/internal/store"
)

type createTopicRequest struct {
	Title    string `json:"topicTitle" validate:"required,max=100"`
	Contents string `json:"topicContents" validate:"required"`
	Type     string `json:"type" validate:"required"`
	LID      *int64 `json:"lid"`
}

type updateTopicRequest struct {
	Title    *string `json:"topicTitle" validate:"omitempty,min=1,max=100"`
	Contents *string `json:"topicContents"`
	Recruit  *string `json:"recruit"`
	LID      *int64  `json:"lid"`
}

// topicJSON flattens the nullable join columns the way the legacy clients
// expect them: strings default to "", numbers to 0.
func topicJSON(t store.Topic) map[string]any {
	return map[string]any{
		"tid":           t.TID,
		"topicTitle":    t.Title,
		"topicContents": t.Contents,
		"userID":        t.AuthorID.String,
		"nickName":      t.AuthorNick.String,
		"userPicture":   t.AuthorPic.String,
		"lid":           t.LID.Int64,
		"locationName":  t.LocationName.String,
		"topicLike":     t.Likes.Int64,
		"recruit":       t.Recruit.String,
		"type":          t.Type.String,
		"created_at":    t.CreatedAt,
		"updated_at":    t.UpdatedAt,
	}
}

func topicsJSON(topics []store.Topic) []map[string]any {
	out := make([]map[string]any, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicJSON(t))
	}
	return out
}

// CreateTopic inserts a topic owned by the subject.
func (a *API) CreateTopic(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	var req createTopicRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	tid, err := a.store.CreateTopic(r.Context(), sub.UID, req.Title, req.Contents, req.Type, req.LID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]int64{"tid": tid})
}

// ListTopics returns the filtered, paginated list.
func (a *API) ListTopics(w http.ResponseWriter, r *http.Request) {
	c := query.FromValues(r.URL.Query(), "type", "recruit")
	topics, err := a.store.Topics(r.Context(), c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"topics": topicsJSON(topics)})
}

// CountTopics returns the total for the same filters ListTopics accepts.
func (a *API) CountTopics(w http.ResponseWriter, r *http.Request) {
	c := query.FromValues(r.URL.Query(), "type", "recruit")
	n, err := a.store.CountTopics(r.Context(), c)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"count": n})
}

// GetTopic returns one topic or 404.
func (a *API) GetTopic(w http.ResponseWriter, r *http.Request) {
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := a.store.TopicByID(r.Context(), tid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if t == nil {
		a.fail(w, r, apperr.E(apperr.NotFound, "topic does not exist"))
		return
	}
	a.respond(w, http.StatusOK, topicJSON(*t))
}

// UpdateTopic merges changed fields after the store's ownership check.
func (a *API) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateTopicRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.store.UpdateTopic(r.Context(), tid, sub.UID, store.TopicInput{
		Title:    req.Title,
		Contents: req.Contents,
		Recruit:  req.Recruit,
		LID:      req.LID,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"updated": n})
}

// DeleteTopic runs the comments-then-topic cascade.  A partial outcome is
// reported as 500 with the per-phase counts, never silently absorbed.
func (a *API) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	tid, err := pathID(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.store.DeleteTopic(r.Context(), tid, sub.UID)
	if err != nil {
		var partial *store.PartialDeleteError
		if errors.As(err, &partial) {
			a.log.Errorw("partial topic delete",
				"tid", tid, "children", partial.Result.Children, "error", err)
			a.respond(w, http.StatusInternalServerError, map[string]any{
				"error": map[string]string{
					"kind":    string(apperr.Internal),
					"message": "delete incomplete; comments removed but topic remains",
				},
				"deleted": partial.Result,
			})
			return
		}
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"deleted": res})
}
