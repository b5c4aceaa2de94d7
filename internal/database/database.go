// Package database centralises sqlx connection helpers and the connection
// supervisor.  The driver is go-sql-driver/mysql, which also covers MariaDB
// when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(ctx, dsn)          – open, tune the pool, and ping before returning.
//	NewSupervisor(cfg, log) – self-healing owner of the shared handle.
//	NewStatic(db)           – wrap an existing handle (tests, tools).
//
// Open pings before returning so callers fail fast during bootstrap.
package database

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Pool defaults: modest sizes suitable for a single-service deployment.
const (
	defaultMaxOpen  = 15
	defaultMaxIdle  = 5
	defaultLifetime = 30 * time.Minute
)

// Open returns a *sqlx.DB with the default pool tuning.  The context bounds
// the verification ping only; the pool itself outlives it.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(defaultMaxOpen)
	db.SetMaxIdleConns(defaultMaxIdle)
	db.SetConnMaxLifetime(defaultLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
