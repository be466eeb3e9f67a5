// Package cli implements the catalog subcommands: adding books, searching,
// inspecting shelves, and maintenance. Each command opens its own database
// handle, runs one operation, and exits.
package cli

import (
	"fmt"
	"log"

	"github.com/bookwyrms/hoard/internal/database"
	"github.com/bookwyrms/hoard/internal/library"
	"github.com/bookwyrms/hoard/internal/metadata"
	"github.com/bookwyrms/hoard/internal/search"
)

// openService wires the façade against the given database file. The search
// index is rebuilt from the books relation on every invocation since CLI
// processes are short-lived.
func openService(dbPath string, withLookup bool, googleAPIKey string) (*library.Service, func(), error) {
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	index := search.NewIndex()
	store := database.NewStore(db, index)
	if _, err := store.RebuildIndex(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("rebuild search index: %w", err)
	}

	var lookup metadata.Lookup
	if withLookup {
		lookup = metadata.DefaultChain(googleAPIKey)
	}
	return library.NewService(store, index, lookup), cleanup, nil
}
