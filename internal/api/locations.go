// internal/api/locations.go
//
// Location, favorite, and recommendation handlers.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/auth"
)

type createLocationRequest struct {
	Name string `json:"locationName" validate:"required,max=45"`
}

type addFavoriteRequest struct {
	LID int64 `json:"lid" validate:"required,gt=0"`
}

type createRecommendedRequest struct {
	Title    string `json:"title" validate:"required,max=100"`
	Location string `json:"location" validate:"required,max=100"`
	Content  string `json:"content" validate:"required"`
}

// CreateLocation registers a new place.
func (a *API) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	lid, err := a.store.CreateLocation(r.Context(), req.Name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]int64{"lid": lid})
}

// ListLocations returns every place.
func (a *API) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := a.store.Locations(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"locations": locations})
}

// DeleteLocation removes one place.
func (a *API) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	lid, err := pathID(chi.URLParam(r, "lid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.store.DeleteLocation(r.Context(), lid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"deleted": n})
}

// AddFavorite marks a place as the subject's favorite.
func (a *API) AddFavorite(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	var req addFavoriteRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.store.AddFavorite(r.Context(), sub.UID, req.LID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]bool{"added": true})
}

// RemoveFavorite drops ?lid= from the subject's favorites.
func (a *API) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.FromContext(r.Context())
	lid, err := pathID(r.URL.Query().Get("lid"))
	if err != nil {
		a.fail(w, r, apperr.E(apperr.InvalidInput, "lid parameter is required"))
		return
	}
	n, err := a.store.RemoveFavorite(r.Context(), sub.UID, lid)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ListRecommended returns every recommendation post.
func (a *API) ListRecommended(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.RecommendedList(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusOK, map[string]any{"recommended": posts})
}

// CreateRecommended inserts a recommendation post.
func (a *API) CreateRecommended(w http.ResponseWriter, r *http.Request) {
	var req createRecommendedRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	rid, err := a.store.CreateRecommended(r.Context(), req.Title, req.Location, req.Content)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, http.StatusCreated, map[string]int64{"rid": rid})
}
