package batchdb

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	// ErrInvalidBatchSize is returned when the batch size is invalid.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
	// ErrInvalidSaveEvery is returned when the staleness interval is invalid.
	ErrInvalidSaveEvery = errors.New("save interval must be greater than 0")
)

// Builder is a builder for creating a new Writer.
type Builder struct {
	db            *gorm.DB
	batchSize     int
	saveEvery     time.Duration
	logger        zerolog.Logger
	resetOnCommit bool
}

// New creates a new Builder with default values: a batch size of 100 and a
// save interval of one second.
//
// The given engine handle may be nil, in which case one is opened from the
// BATCHDB_CONNECTION_URI environment variable when the writer is built.
func New(db *gorm.DB) *Builder {
	return &Builder{
		db:        db,
		batchSize: 100,
		saveEvery: time.Second,
		logger:    zerolog.Nop(),
	}
}

// BatchSize sets the number of added items after which the writer commits.
func (b *Builder) BatchSize(batchSize int) *Builder {
	b.batchSize = batchSize
	return b
}

// SaveEvery sets how stale pending work may get before the next add commits it.
func (b *Builder) SaveEvery(saveEvery time.Duration) *Builder {
	b.saveEvery = saveEvery
	return b
}

// Logger sets the logger used by the writer. By default nothing is logged.
func (b *Builder) Logger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// ResetOnCommit makes the size trigger count items staged since the last
// commit, instead of testing the cumulative counter against the batch size.
// See the note on Writer for how the two differ.
func (b *Builder) ResetOnCommit() *Builder {
	b.resetOnCommit = true
	return b
}

// Build a new Writer with the configured values. This returns an error if the
// configuration is invalid, or if no engine was given and opening one from the
// environment fails.
func (b *Builder) Build() (*Writer, error) {
	if b.batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	if b.saveEvery <= 0 {
		return nil, ErrInvalidSaveEvery
	}

	db := b.db
	if db == nil {
		var err error
		db, err = OpenFromEnv(WithLogger(b.logger))
		if err != nil {
			return nil, err
		}
		b.logger.Info().Msg("no engine given, opened one from the environment")
	}

	w := &Writer{
		db:            db,
		batchSize:     b.batchSize,
		saveEvery:     b.saveEvery,
		logger:        b.logger,
		resetOnCommit: b.resetOnCommit,
		session:       newSession(),
		lastSave:      time.Now(),
	}
	w.setFinalizer()
	return w, nil
}
