// internal/api/router.go
//
// Route table.
//
// Context
// -------
// Protected routes live under one RequireSubject group, so enforcement is a
// property of the table, not of individual handlers.  Identity always comes
// from the Authorization header; the legacy path-segment token
// (/user/:token/...) is gone.

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/database"
	"github.com/saessac/soda-server/internal/middleware"
	"github.com/saessac/soda-server/internal/requestinfo"
	"github.com/saessac/soda-server/internal/token"
)

// Router assembles the full HTTP surface.
func Router(a *API, tokens *token.Manager, sup *database.Supervisor, log *zap.SugaredLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(requestinfo.Enrich)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Security)
	r.Use(middleware.Authenticate(tokens))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		a.respond(w, http.StatusOK, map[string]string{"service": "soda-server"})
	})
	r.Get("/healthz", healthz(a, sup))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/nickname", a.Nickname)

	r.Route("/user", func(r chi.Router) {
		r.Get("/checkid", a.CheckID)
		r.Post("/register", a.Register)
		r.Post("/insert", a.Register) // legacy alias
		r.Post("/login", a.Login)
		r.Get("/list", a.ListUsers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSubject)
			r.Get("/", a.Me)
			r.Put("/", a.UpdateMe)
			r.Delete("/", a.DeleteMe)
			r.Put("/password", a.UpdatePassword)
			r.Post("/picture", a.UploadPicture)
			r.Put("/picture", a.ResetPicture)
			r.Get("/topics", a.MyTopics)
			r.Get("/checklogin", a.CheckLogin)
		})
	})

	r.Route("/topics", func(r chi.Router) {
		r.Get("/", a.ListTopics)
		r.Get("/count", a.CountTopics)
		r.Get("/{tid}", a.GetTopic)
		r.Get("/{tid}/comments", a.ListComments)
		r.Get("/{tid}/comments/count", a.CountComments)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSubject)
			r.Post("/", a.CreateTopic)
			r.Put("/{tid}", a.UpdateTopic)
			r.Delete("/{tid}", a.DeleteTopic)
			r.Post("/{tid}/comments", a.CreateComment)
		})
	})

	r.With(middleware.RequireSubject).Delete("/comments/{tcid}", a.DeleteComment)

	r.Route("/locations", func(r chi.Router) {
		r.Post("/", a.CreateLocation)
		r.Get("/", a.ListLocations)
		r.Delete("/{lid}", a.DeleteLocation)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSubject)
		r.Post("/favorites", a.AddFavorite)
		r.Delete("/favorites", a.RemoveFavorite)
	})

	r.Get("/recommended", a.ListRecommended)
	r.Post("/recommended", a.CreateRecommended)

	return r
}

// healthz reports supervisor liveness: 200 while a handle is installed, 503
// while the supervisor is reconnecting.  A failed check nudges the
// supervisor so an external prober shortens the outage instead of just
// observing it; the dial runs off-request and overlapping nudges collapse.
func healthz(a *API, sup *database.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sup.Acquire(); err != nil {
			go sup.Nudge(context.Background())
			a.respond(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
		a.respond(w, http.StatusOK, map[string]any{"ok": true})
	}
}
