package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/asaidimu/go-rowsel/core/predicate"
	"github.com/asaidimu/go-rowsel/core/selection"
	"github.com/asaidimu/go-rowsel/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const dbFileName = "students.db"

var students = [][]string{
	{"Amanda", "Andrews", "22", "business"},
	{"Brian", "Becker", "21", "computer science"},
	{"Carol", "Conners", "21", "computer science"},
	{"Joe", "Jackson", "21", "mathematics"},
	{"Sarah", "Summers", "21", "computer science"},
	{"Diane", "Dole", "20", "computer engineering"},
	{"David", "Dole", "22", "electrical engineering"},
	{"Dominick", "Dole", "22", "communications"},
	{"George", "Genius", "9", "astrophysics"},
}

func main() {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := os.Remove(dbFileName); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database file %s: %v", dbFileName, err)
	}

	db, err := sql.Open("sqlite3", dbFileName)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			log.Printf("Error closing database connection: %v", cErr)
		}
	}()

	ctx := context.Background()
	options := sqlite.DefaultOptions()
	options.Columns = []string{"First", "Last", "Age", "Major"}

	sheet, err := sqlite.NewTable(ctx, db, "students", logger, options)
	if err != nil {
		log.Fatalf("Failed to open table: %v", err)
	}
	for _, row := range students {
		if err := sheet.AddRow(ctx, row...); err != nil {
			log.Fatalf("Failed to insert row: %v", err)
		}
	}

	selector, err := selection.NewSelector(logger, nil)
	if err != nil {
		log.Fatalf("Failed to initialize selector: %v", err)
	}
	contains := func(column, term string) predicate.Predicate {
		p, err := predicate.NewContains(sheet, column, term)
		if err != nil {
			log.Fatalf("Failed to build predicate: %v", err)
		}
		return p
	}

	queries := []predicate.Predicate{
		contains("Last", "Dole"),
		predicate.NewAnd(contains("Last", "Dole"), predicate.NewNot(contains("First", "v"))),
		predicate.NewOr(contains("Major", "computer"), contains("Age", "9")),
	}

	// The bus may deliver after Select returns; collect here and log before exit.
	finished := make(chan selection.SelectionEvent, len(queries))
	selector.Subscribe(selection.SelectionSuccess, func(ctx context.Context, event selection.SelectionEvent) error {
		select {
		case finished <- event:
		default:
		}
		return nil
	})

	for _, q := range queries {
		sel, err := selector.Select(ctx, sheet, q)
		if err != nil {
			log.Fatalf("Selection failed: %v", err)
		}
		fmt.Printf("\n%v\n", q)
		if err := selection.Print(os.Stdout, sheet, sel); err != nil {
			log.Fatalf("Failed to print selection: %v", err)
		}
	}

	events := awaitEvents(finished, len(queries), 2*time.Second)
	for _, event := range events {
		logger.Info("Selection finished",
			zap.String("predicate", event.Predicate),
			zap.Int("matched", event.Matched),
			zap.Duration("duration", event.Duration))
	}
	if len(events) < len(queries) {
		logger.Warn("Timed out waiting for selection events",
			zap.Int("expected", len(queries)),
			zap.Int("received", len(events)))
	}

	if _, err := predicate.NewContains(sheet, "Middle", "x"); err != nil {
		fmt.Printf("\nExpected failure: %v\n", err)
	}
}

// awaitEvents receives up to n events from ch, returning early once timeout
// has elapsed.
func awaitEvents(ch <-chan selection.SelectionEvent, n int, timeout time.Duration) []selection.SelectionEvent {
	events := make([]selection.SelectionEvent, 0, n)
	deadline := time.After(timeout)
	for len(events) < n {
		select {
		case event := <-ch:
			events = append(events, event)
		case <-deadline:
			return events
		}
	}
	return events
}
