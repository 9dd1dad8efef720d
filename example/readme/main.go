// Package main contains the code snippet from the README.md file.
package main

import (
	"context"
	"os"
	"time"

	"github.com/friendlycaptcha/batchdb"
	"github.com/rs/zerolog"
)

// Event is a record type that will be written in batches.
type Event struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Open an engine once per process. The path can also come from the
	// BATCHDB_CONNECTION_URI environment variable, see OpenFromEnv.
	db, err := batchdb.Open("events.db", batchdb.WithModels(&Event{}), batchdb.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	// Create a writer that commits after 2000 added records, or once pending
	// work is older than 10 seconds - whichever comes first.
	writer, err := batchdb.New(db).BatchSize(2000).SaveEvery(10 * time.Second).Logger(logger).Build()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for i := 0; i < 5000; i++ {
		// Add stages the record; it only returns an error when it triggers a
		// commit and that commit fails.
		if err := writer.Add(ctx, &Event{Name: "Some Name"}); err != nil {
			panic(err)
		}
	}

	// Close commits whatever is still pending and releases the session.
	if err := writer.Close(ctx); err != nil {
		panic(err)
	}
}
