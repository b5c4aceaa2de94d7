// internal/middleware/security.go
//
// Security headers for a JSON API.
//
// Notes
// -----
// • Headers are set before next.ServeHTTP; once the handler writes the
//   body the header map is sealed.
// • No CSP.  Every response here is JSON, never rendered markup.

package middleware

import "net/http"

// Security sets defensive headers on every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
