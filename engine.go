package batchdb

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// EnvConnectionURI is the environment variable holding the connection string
// used when no engine is passed in explicitly. An empty value opens an
// in-memory database.
const EnvConnectionURI = "BATCHDB_CONNECTION_URI"

type engineConfig struct {
	debug  bool
	models []any
	logger zerolog.Logger
}

// EngineOption configures how an engine is opened.
type EngineOption func(*engineConfig)

// WithDebug enables verbose logging of the SQL statements the engine runs.
func WithDebug(debug bool) EngineOption {
	return func(c *engineConfig) {
		c.debug = debug
	}
}

// WithModels migrates the given models when the engine is opened.
func WithModels(models ...any) EngineOption {
	return func(c *engineConfig) {
		c.models = append(c.models, models...)
	}
}

// WithLogger sets the logger that receives the engine's internal warnings and
// errors. By default they are discarded.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// Open opens a connection to a sqlite database file and returns the engine
// handle. An empty path opens an in-memory database.
//
// The returned handle is intended to be created once per process and shared:
// it is safe for concurrent use by independent sessions, with pooling
// delegated to the underlying driver.
func Open(path string, options ...EngineOption) (*gorm.DB, error) {
	cfg := engineConfig{logger: zerolog.Nop()}
	for _, o := range options {
		o(&cfg)
	}

	if path == "" {
		path = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: &gormLogAdapter{debug: cfg.debug, log: cfg.logger},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if path == ":memory:" {
		// An in-memory database exists per connection, so the pool must be
		// kept at a single connection for all sessions to see the same data.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("unable to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if len(cfg.models) > 0 {
		if err := db.AutoMigrate(cfg.models...); err != nil {
			return nil, fmt.Errorf("unable to migrate: %w", err)
		}
	}

	return db, nil
}

// OpenFromEnv opens an engine using the connection string from the
// BATCHDB_CONNECTION_URI environment variable.
func OpenFromEnv(options ...EngineOption) (*gorm.DB, error) {
	return Open(os.Getenv(EnvConnectionURI), options...)
}
