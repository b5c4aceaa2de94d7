// internal/middleware/auth.go
//
// Bearer-token authentication.
//
// Context
// -------
// Authenticate decodes the Authorization header when present and stores the
// verified subject on the request context.  It never rejects by itself, so
// public routes stay public.  RequireSubject is the gate mounted on the
// protected route group; it rejects with 401 before the handler runs.  The
// legacy servers checked tokens ad hoc inside individual handlers and left
// several mutating routes unchecked, so enforcement now lives in exactly one
// place.

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/auth"
	"github.com/saessac/soda-server/internal/token"
)

// Authenticate verifies a "Bearer <jwt>" Authorization header, if any, and
// attaches the subject to the context.  Invalid tokens are treated the same
// as absent ones here; the distinction only matters at RequireSubject.
func Authenticate(mgr *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := mgr.Verify(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := auth.WithSubject(r.Context(), auth.Subject{
				UID:      claims.UID,
				UserID:   claims.UserID,
				Nickname: claims.Nickname,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSubject rejects requests that carry no verified subject.
func RequireSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken reads the Authorization header.  Besides the standard
// "Bearer <jwt>" form, a schemeless value is accepted as the token itself;
// the legacy clients sent the raw JWT with no scheme at all.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return ""
	}
	scheme, rest, ok := strings.Cut(h, " ")
	if !ok {
		return h
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(rest)
}

// unauthorized writes the error envelope directly; importing the api
// package here would create an import cycle through the router.
func unauthorized(w http.ResponseWriter) {
	kind := apperr.Unauthorized
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apperr.Status(kind))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    string(kind),
			"message": "missing or invalid token",
		},
	})
}
