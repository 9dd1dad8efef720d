// Package main provides an example binary that demonstrates flushing the
// writer on shutdown.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/friendlycaptcha/batchdb"
	"github.com/rs/zerolog"
)

const (
	batchSize = 4
	saveEvery = time.Second * 5

	shutdownTimeout = time.Second * 4
)

type word struct {
	ID   uint `gorm:"primaryKey"`
	Text string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	db, err := batchdb.Open("words.db", batchdb.WithModels(&word{}), batchdb.WithLogger(logger))
	if err != nil {
		fmt.Printf("Failed to open engine: %v\n", err)
		os.Exit(1)
	}

	writer, err := batchdb.New(db).BatchSize(batchSize).SaveEvery(saveEvery).Logger(logger).Build()
	if err != nil {
		fmt.Printf("Failed to build writer: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Started, type words and press ENTER to add records.\n Type exit to stop.\n")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Context cancelled, flushing pending records.")
			break loop
		case item, ok := <-lines:
			if !ok || item == "exit" {
				break loop
			}
			if err := writer.Add(ctx, &word{Text: item}); err != nil {
				fmt.Printf("Failed to add item %s: %v\n", item, err)
			}
		}
	}

	// Close flushes whatever is still pending. Give it a bounded amount of
	// time so shutdown cannot hang on a stuck database.
	closeCtx, closeCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer closeCancel()

	if err := writer.Close(closeCtx); err != nil {
		fmt.Printf("Failed to flush on close: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("FIN.")
}
