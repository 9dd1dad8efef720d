package batchdb

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

type sessionConfig struct {
	autoCommit bool
}

// SessionOption configures a single scoped session.
type SessionOption func(*sessionConfig)

// AutoCommit makes the session commit on normal return of the scoped
// function. Without it the factory rolls the session back on exit and
// persisting work is up to the function itself.
func AutoCommit(autoCommit bool) SessionOption {
	return func(c *sessionConfig) {
		c.autoCommit = autoCommit
	}
}

// SessionFactory produces short-lived, scoped sessions bound to a shared
// engine. It holds no state beyond the engine handle.
type SessionFactory struct {
	db *gorm.DB
}

// NewSessionFactory creates a factory bound to the given engine. A nil engine
// falls back to opening one from the BATCHDB_CONNECTION_URI environment
// variable.
func NewSessionFactory(db *gorm.DB) (*SessionFactory, error) {
	if db == nil {
		var err error
		db, err = OpenFromEnv()
		if err != nil {
			return nil, err
		}
	}
	return &SessionFactory{db: db}, nil
}

// WithSession runs fn with a session scoped to the call: the session is
// released when fn returns, no matter how it returns, and must not be used
// afterwards.
//
// If fn returns nil and AutoCommit was requested, the session is committed;
// otherwise it is rolled back. Any error from fn, or from the commit itself,
// is returned unchanged — no retries, no error translation.
func (f *SessionFactory) WithSession(ctx context.Context, fn func(tx *gorm.DB) error, opts ...SessionOption) (err error) {
	var cfg sessionConfig
	for _, o := range opts {
		o(&cfg)
	}

	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if cfg.autoCommit {
		return tx.Commit().Error
	}

	// fn may have committed (or rolled back) the transaction itself; rolling
	// back a finished transaction is not an error worth surfacing.
	if err := tx.Rollback().Error; err != nil &&
		!errors.Is(err, sql.ErrTxDone) && !errors.Is(err, gorm.ErrInvalidTransaction) {
		return err
	}
	return nil
}
