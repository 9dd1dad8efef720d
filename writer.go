// Package batchdb provides batched writes to a relational database, committing
// staged records once a size or staleness threshold is crossed.
package batchdb

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// session is the writer's unit of work: the records staged since the last
// commit. They are persisted atomically in a single transaction.
type session struct {
	pending []any
}

func newSession() *session {
	return &session{}
}

// Writer accumulates added records and commits them in batches.
//
// A commit is triggered inline by Add when either the cumulative number of
// added items is a multiple of the batch size, or more than the save interval
// has passed since the last commit — whichever comes first. There is no
// background flushing; all database I/O happens on the calling goroutine.
//
// Note that by default the size trigger tests the cumulative counter, not the
// number of items currently pending. Once the counter sits exactly on a
// multiple of the batch size, any add that does not move it past the boundary
// triggers another commit. Use the ResetOnCommit builder option to count
// pending items instead.
//
// A Writer is not safe for concurrent use. Callers must serialize access to a
// single instance themselves.
type Writer struct {
	db            *gorm.DB
	batchSize     int
	saveEvery     time.Duration
	logger        zerolog.Logger
	resetOnCommit bool

	session  *session
	count    int
	lastSave time.Time
}

// Add stages the given records for insertion and commits the batch if a
// threshold was crossed. Staging itself never touches the database: an error
// is only returned when a commit is triggered and fails, in which case the
// staged records are discarded (see Commit).
//
// Adding zero items is a no-op, apart from the threshold check.
func (w *Writer) Add(ctx context.Context, items ...any) error {
	s := w.getSession()
	s.pending = append(s.pending, items...)
	w.count += len(items)
	w.logger.Debug().Int("items", len(items)).Msg("added items")

	if !w.shouldCommit() {
		return nil
	}

	if len(s.pending) > 0 {
		w.logger.Info().Int("pending", len(s.pending)).Msg("committing batch to database")
	}
	return w.Commit(ctx)
}

func (w *Writer) shouldCommit() bool {
	var sized bool
	if w.resetOnCommit {
		sized = len(w.session.pending) >= w.batchSize
	} else {
		sized = w.count%w.batchSize == 0
	}
	return sized || time.Since(w.lastSave) > w.saveEvery
}

// Commit persists all staged records atomically in a single transaction.
//
// On failure the transaction is rolled back, the staged records are discarded,
// and the database error is returned as-is; no retry is attempted. A
// subsequent Add starts from a clean state. On success the staleness clock is
// reset.
func (w *Writer) Commit(ctx context.Context) error {
	s := w.getSession()

	if len(s.pending) > 0 {
		err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, item := range s.pending {
				if err := tx.Create(item).Error; err != nil {
					return err
				}
			}
			return nil
		})
		s.pending = nil
		if err != nil {
			w.logger.Warn().Err(err).Msg("got error when trying to commit to database")
			return err
		}
	}

	w.lastSave = time.Now()
	return nil
}

// Pending returns the number of records staged but not yet committed.
func (w *Writer) Pending() int {
	if w.session == nil {
		return 0
	}
	return len(w.session.pending)
}

// getSession returns the current session, creating a fresh one if it is
// absent (for example after Close). Recreating the session re-arms the
// finalizer safety net that Close cleared.
func (w *Writer) getSession() *session {
	if w.session == nil {
		w.logger.Info().Msg("no session, creating a new one")
		w.session = newSession()
		w.setFinalizer()
	}
	return w.session
}

// Close commits any pending work and releases the writer's session. This is
// the documented way to finish with a Writer; the finalizer set at build time
// is only a last-resort safety net and its timing is not guaranteed.
//
// The writer self-heals if used again after Close: the next Add creates a
// fresh session.
func (w *Writer) Close(ctx context.Context) error {
	runtime.SetFinalizer(w, nil)
	w.logger.Debug().Msg("cleaning up session")

	if w.session == nil {
		return nil
	}
	err := w.Commit(ctx)
	w.session = nil
	return err
}

func (w *Writer) setFinalizer() {
	runtime.SetFinalizer(w, func(w *Writer) {
		if w.session == nil || len(w.session.pending) == 0 {
			return
		}
		w.logger.Warn().Int("pending", len(w.session.pending)).Msg("writer was never closed, flushing pending work")
		// Commit logs the error itself if this fails; there is no caller left
		// to return it to.
		_ = w.Commit(context.Background())
	})
}
