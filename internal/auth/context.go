// internal/auth/context.go
//
// Request-context carrier for the authenticated subject.
//
// The Authenticate middleware resolves a bearer token and stores the subject
// here; handlers and stores read it back.  A missing subject means the
// request is anonymous.  The middleware never rejects by itself; protected
// routes do (see middleware.RequireSubject).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package auth

import "context"

// Subject is the identity resolved from a verified token.
type Subject struct {
	UID      int64
	UserID   string
	Nickname string
}

// subjectKey is unexported to avoid context-key collisions.
type subjectKey struct{}

// WithSubject returns a new context carrying the subject.
func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// FromContext extracts the subject from ctx.  ok == false on anonymous
// requests.
func FromContext(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}
