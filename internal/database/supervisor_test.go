// internal/database/supervisor_test.go
//
// Supervisor tests use an injected Opener so no real MySQL is needed; the
// handle handed back on success is a sqlmock connection wrapped in sqlx.

package database

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/apperr"
)

func mockHandle(t *testing.T) *sqlx.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return sqlx.NewDb(db, "sqlmock")
}

func TestAcquireFailsFastWhenDown(t *testing.T) {
	s := NewSupervisor(SupervisorConfig{
		Open: func(context.Context) (*sqlx.DB, error) {
			return nil, mysql.ErrInvalidConn
		},
	}, zap.NewNop().Sugar())

	if _, err := s.Acquire(); !apperr.Is(err, apperr.Unavailable) {
		t.Fatalf("Acquire kind = %v, want Unavailable", err)
	}
}

func TestReconnectAfterDelay(t *testing.T) {
	const delay = 20 * time.Millisecond

	var attempts atomic.Int32
	handle := mockHandle(t)
	s := NewSupervisor(SupervisorConfig{
		RetryDelay:    delay,
		ProbeInterval: time.Hour, // probe never fires during the test
		Open: func(context.Context) (*sqlx.DB, error) {
			if attempts.Add(1) < 3 {
				return nil, mysql.ErrInvalidConn
			}
			return handle, nil
		},
	}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	go s.Run(ctx)

	deadline := time.After(2 * time.Second)
	for {
		if _, err := s.Acquire(); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("handle never restored (attempts=%d)", attempts.Load())
		case <-time.After(time.Millisecond):
		}
	}

	// Two failures then a success: three delayed attempts minimum.
	if elapsed := time.Since(start); elapsed < 3*delay {
		t.Fatalf("restored after %v, want >= %v", elapsed, 3*delay)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("open attempts = %d, want 3", got)
	}
}

func TestConcurrentNudgesShareOneDial(t *testing.T) {
	var attempts atomic.Int32
	release := make(chan struct{})
	handle := mockHandle(t)
	s := NewSupervisor(SupervisorConfig{
		RetryDelay:    time.Hour, // retry loop never fires during the test
		ProbeInterval: time.Hour,
		Open: func(context.Context) (*sqlx.DB, error) {
			attempts.Add(1)
			<-release
			return handle, nil
		},
	}, zap.NewNop().Sugar())

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s.Nudge(context.Background())
			done <- struct{}{}
		}()
	}

	// Wait for the first dial to start, give the second nudge time to join
	// it, then let the opener return.
	deadline := time.After(2 * time.Second)
	for attempts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("dial never started")
		case <-time.After(time.Millisecond):
		}
	}
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("nudge never returned")
		}
	}

	if got := attempts.Load(); got != 1 {
		t.Fatalf("open attempts = %d, want 1", got)
	}
	if _, err := s.Acquire(); err != nil {
		t.Fatalf("Acquire after nudge: %v", err)
	}
}

func TestNudgeNoopWhenLive(t *testing.T) {
	var attempts atomic.Int32
	s := NewStatic(mockHandle(t))
	s.open = func(context.Context) (*sqlx.DB, error) {
		attempts.Add(1)
		return nil, mysql.ErrInvalidConn
	}

	s.Nudge(context.Background())
	if got := attempts.Load(); got != 0 {
		t.Fatalf("open attempts = %d, want 0", got)
	}
}

func TestServerErrorIsFatal(t *testing.T) {
	srvErr := &mysql.MySQLError{Number: 1045, Message: "access denied"}
	s := NewSupervisor(SupervisorConfig{
		RetryDelay:    time.Millisecond,
		ProbeInterval: time.Hour,
		Open: func(context.Context) (*sqlx.DB, error) {
			return nil, srvErr
		},
	}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	select {
	case err := <-s.Fatal():
		if err != srvErr {
			t.Fatalf("fatal err = %v, want %v", err, srvErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fatal error never delivered")
	}

	// The supervisor must not keep retrying a server rejection.
	if _, err := s.Acquire(); !apperr.Is(err, apperr.Unavailable) {
		t.Fatalf("Acquire after fatal = %v, want Unavailable", err)
	}
}

func TestNewStatic(t *testing.T) {
	handle := mockHandle(t)
	s := NewStatic(handle)

	got, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != handle {
		t.Fatal("Acquire returned a different handle")
	}
}
