// internal/middleware/accesslog.go
//
// Structured access log plus request counters.
//
// One INFO line per request with method, path, status, duration, and the
// client fingerprint collected by requestinfo.Enrich.  The Prometheus
// counter is labelled by route pattern, method, and status class; patterns
// come from the router, not raw paths, so cardinality stays flat.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/metrics"
	"github.com/saessac/soda-server/internal/requestinfo"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog logs every request and bumps the request counter.
func AccessLog(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					"ip", info.Geo.IP,
					"country", info.Geo.CountryISO,
					"browser", info.UA.Browser,
					"device", info.UA.Device,
					"bot", info.UA.Bot,
				)
			}
			log.Infow("request", fields...)

			metrics.HTTPRequestsTotal.
				WithLabelValues(routePattern(r), r.Method, statusClass(rec.status)).
				Inc()
		})
	}
}

// routePattern reads the matched chi pattern after the handler ran, so
// "/topics/12" counts under "/topics/{tid}".  Unrouted requests share one
// bucket.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusClass collapses a status code to "2xx", "4xx", etc.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
