// internal/api/respond.go
//
// Response envelope and request decoding.
//
// Context
// -------
// Success bodies are plain JSON objects.  Failures always use
// {"error": {"kind", "message"}} with the status mapped from the error
// kind; the legacy servers redirected failures to an /error page, which no
// JSON client could do anything with.  Internal causes are logged here and
// never serialized.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saessac/soda-server/internal/apperr"
)

// validate is the shared struct validator for request payloads.
var validate = validator.New(validator.WithRequiredStructEnabled())

func (a *API) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Errorw("encode response", "error", err)
	}
}

// fail writes the error envelope.  Unclassified errors become 500 with a
// generic message; their cause goes to the log only.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	msg := "internal error"

	var ae *apperr.Error
	if errors.As(err, &ae) && kind != apperr.Internal {
		msg = ae.Message
	}
	if kind == apperr.Internal || kind == apperr.Unavailable {
		a.log.Errorw("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}

	a.respond(w, apperr.Status(kind), map[string]any{
		"error": map[string]string{
			"kind":    string(kind),
			"message": msg,
		},
	})
}

// decode reads a JSON or form-encoded body into dst and validates it.
func decode(r *http.Request, dst any) error {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"), ct == "":
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return apperr.E(apperr.InvalidInput, "malformed request body", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return apperr.E(apperr.InvalidInput, "malformed form body", err)
		}
		if err := formInto(r.PostForm, dst); err != nil {
			return apperr.E(apperr.InvalidInput, "malformed form body", err)
		}
	}

	if err := validate.Struct(dst); err != nil {
		return apperr.E(apperr.InvalidInput, "missing or invalid field", err)
	}
	return nil
}

// formInto maps form values onto dst through a JSON round trip.  Values are
// tried as strings first; if the target has numeric fields a second pass
// promotes digit-only values to numbers.
func formInto(form map[string][]string, dst any) error {
	asStrings := make(map[string]any, len(form))
	asNumbers := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) == 0 {
			continue
		}
		asStrings[k] = vs[0]
		if n, err := strconv.ParseInt(vs[0], 10, 64); err == nil {
			asNumbers[k] = n
		} else {
			asNumbers[k] = vs[0]
		}
	}

	b, err := json.Marshal(asStrings)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err == nil {
		return nil
	}
	b, err = json.Marshal(asNumbers)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// pathID parses a chi URL parameter as an id.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.E(apperr.InvalidInput, "malformed id in path")
	}
	return id, nil
}
