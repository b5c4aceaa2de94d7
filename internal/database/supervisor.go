// internal/database/supervisor.go
//
// Self-healing owner of the shared database handle.
//
// Context
// -------
// The legacy server held one module-level MySQL connection and re-dialed it
// in a 5-second loop whenever the driver reported PROTOCOL_CONNECTION_LOST,
// rethrowing anything else.  The Supervisor keeps that behavior but as an
// injected, explicitly owned resource: handlers borrow the handle per call
// through Acquire and never hold it across requests.
//
// Behavior
// --------
//   - Acquire returns the live *sqlx.DB, or an Unavailable error immediately
//     when no connection is live.  It never blocks waiting for a reconnect.
//   - Run probes the handle on ProbeInterval.  A transport-level failure
//     marks the handle dead and starts a retry loop on RetryDelay, forever,
//     logging lost → retrying → restored transitions.
//   - Server-level errors (bad credentials, unknown database) are not
//     retried; they are delivered on Fatal() so main can exit.
//
// Notes
// -----
// • Concurrent reconnect attempts collapse through singleflight.
// • Oxford commas, two spaces after periods.
package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/saessac/soda-server/internal/apperr"
	"github.com/saessac/soda-server/internal/metrics"
)

// Timing defaults mirror the legacy reconnect loop.
const (
	DefaultRetryDelay    = 5 * time.Second
	DefaultProbeInterval = 15 * time.Second
)

// Opener dials the store.  Injected so tests can substitute a fake.
type Opener func(ctx context.Context) (*sqlx.DB, error)

// SupervisorConfig collects the knobs NewSupervisor needs.
type SupervisorConfig struct {
	DSN           string
	RetryDelay    time.Duration // 0 → DefaultRetryDelay
	ProbeInterval time.Duration // 0 → DefaultProbeInterval
	Open          Opener        // nil → Open(ctx, DSN)
}

// Supervisor owns the single shared handle.  Safe for concurrent use.
type Supervisor struct {
	open          Opener
	retryDelay    time.Duration
	probeInterval time.Duration
	log           *zap.SugaredLogger

	db    atomic.Pointer[sqlx.DB]
	sfg   singleflight.Group
	fatal chan error
}

// NewSupervisor builds a Supervisor.  Call Connect once during bootstrap,
// then Run in a goroutine.
func NewSupervisor(cfg SupervisorConfig, log *zap.SugaredLogger) *Supervisor {
	s := &Supervisor{
		open:          cfg.Open,
		retryDelay:    cfg.RetryDelay,
		probeInterval: cfg.ProbeInterval,
		log:           log,
		fatal:         make(chan error, 1),
	}
	if s.open == nil {
		dsn := cfg.DSN
		s.open = func(ctx context.Context) (*sqlx.DB, error) { return Open(ctx, dsn) }
	}
	if s.retryDelay <= 0 {
		s.retryDelay = DefaultRetryDelay
	}
	if s.probeInterval <= 0 {
		s.probeInterval = DefaultProbeInterval
	}
	return s
}

// NewStatic wraps an existing handle with no background supervision.  Used
// by tests and one-shot tools.
func NewStatic(db *sqlx.DB) *Supervisor {
	s := &Supervisor{
		retryDelay:    DefaultRetryDelay,
		probeInterval: DefaultProbeInterval,
		log:           zap.S(),
		fatal:         make(chan error, 1),
	}
	s.open = func(context.Context) (*sqlx.DB, error) { return db, nil }
	s.db.Store(db)
	metrics.DBConnectionUp.Set(1)
	return s
}

// Connect performs the initial dial.  A failure here is not fatal; Run will
// keep retrying, and Acquire fails fast in the meantime.
func (s *Supervisor) Connect(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		metrics.DBConnectionUp.Set(0)
		return err
	}
	s.db.Store(db)
	metrics.DBConnectionUp.Set(1)
	return nil
}

// Acquire returns the live handle, or Unavailable when none is live.  The
// caller must not retain the handle across requests.
func (s *Supervisor) Acquire() (*sqlx.DB, error) {
	if db := s.db.Load(); db != nil {
		return db, nil
	}
	return nil, apperr.E(apperr.Unavailable, "database connection is not available")
}

// Fatal delivers at most one unrecoverable driver error.  main selects on
// this channel and shuts down when it fires.
func (s *Supervisor) Fatal() <-chan error { return s.fatal }

// Run probes the handle until ctx is cancelled.  It is the only writer of
// the handle pointer after Connect.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()

	// No handle yet (initial dial failed): go straight to the retry loop.
	if s.db.Load() == nil {
		if !s.reconnect(ctx) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db := s.db.Load()
			if db == nil {
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, s.retryDelay)
			err := db.PingContext(pingCtx)
			cancel()
			if err == nil {
				continue
			}
			if !recoverable(err) {
				s.fail(err)
				return
			}
			s.log.Warnw("db connection lost", "err", err)
			s.db.Store(nil)
			metrics.DBConnectionUp.Set(0)
			_ = db.Close()
			if !s.reconnect(ctx) {
				return
			}
		}
	}
}

// dial performs one connection attempt and installs the handle on success.
// Attempts from the retry loop and from Nudge collapse through singleflight,
// so the store never sees more than one concurrent dial.
func (s *Supervisor) dial(ctx context.Context) error {
	_, err, _ := s.sfg.Do("dial", func() (any, error) {
		if s.db.Load() != nil {
			return nil, nil
		}
		db, err := s.open(ctx)
		if err != nil {
			return nil, err
		}
		s.db.Store(db)
		metrics.DBConnectionUp.Set(1)
		metrics.DBReconnectsTotal.Inc()
		return nil, nil
	})
	return err
}

// Nudge attempts an immediate reconnect when no handle is live.  Callers
// outside the probe loop (the health endpoint) use it so a down store is
// redialed on demand instead of waiting out the retry timer; overlapping
// calls share one dial.  Failures are left for Run to classify and report.
func (s *Supervisor) Nudge(ctx context.Context) {
	if s.db.Load() != nil {
		return
	}
	if err := s.dial(ctx); err == nil {
		s.log.Infow("db connection restored")
	}
}

// reconnect retries the dial every retryDelay until success, a fatal error,
// or cancellation.  Returns false when Run should exit.
func (s *Supervisor) reconnect(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.retryDelay):
		}

		// A Nudge may have restored the handle while we slept.
		if s.db.Load() != nil {
			return true
		}

		err := s.dial(ctx)
		if err == nil {
			s.log.Infow("db connection restored")
			return true
		}
		if !recoverable(err) {
			s.fail(err)
			return false
		}
		metrics.DBReconnectFailuresTotal.Inc()
		s.log.Warnw("db reconnect failed, retrying", "err", err, "delay", s.retryDelay)
	}
}

func (s *Supervisor) fail(err error) {
	s.log.Errorw("db unrecoverable error", "err", err)
	select {
	case s.fatal <- err:
	default:
	}
}

// recoverable separates transport-level disconnects (retry forever) from
// server-level errors (surface and stop), preserving the legacy
// PROTOCOL_CONNECTION_LOST versus rethrow distinction.
func recoverable(err error) bool {
	if err == nil {
		return true
	}

	// A structured server response means the network is fine; the server
	// itself rejected us.  Bad credentials or a missing schema will not be
	// cured by retrying.
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Driver versions differ in how they wrap dial failures.
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "invalid connection") ||
		strings.Contains(msg, "broken pipe")
}
