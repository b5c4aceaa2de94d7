// internal/token/token.go
//
// Stateless identity tokens.
//
// Context
// -------
// Login issues a signed, time-limited JWT that the client carries in the
// Authorization header on every later call.  The server stores nothing; a
// token is verified purely against the deployment secret and its own expiry.
// Only HMAC signatures are accepted, so a token claiming alg "none" or an
// asymmetric alg is rejected outright.
//
// The legacy server shipped with two different TTLs across revisions (60 s
// and 6000 s), neither of them deliberate.  The TTL here is configuration
// with a one-hour default.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL applies when the configuration leaves auth.ttl unset.
const DefaultTTL = time.Hour

// Verification failures, from most to least specific.  Verify collapses the
// jwt library's error set into these three.
var (
	ErrExpired          = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
)

// Claims is the payload embedded in every issued token.
type Claims struct {
	UID      int64  `json:"uid"`
	UserID   string `json:"userid"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// Manager issues and verifies tokens.  Safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string

	now func() time.Time // test seam
}

// NewManager builds a Manager.  ttl <= 0 selects DefaultTTL.
func NewManager(secret string, ttl time.Duration, issuer string) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// TTL reports the configured validity window.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the given subject.  Expiry is now + TTL.
func (m *Manager) Issue(uid int64, userID, nickname string) (string, error) {
	now := m.now()
	claims := &Claims{
		UID:      uid,
		UserID:   userID,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
func (m *Manager) Verify(tok string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tok, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}
