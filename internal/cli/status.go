package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bookwyrms/hoard/internal/config"
)

// StatusCommand summarizes the catalog: totals, unshelved books, and what
// is currently lent out.
type StatusCommand struct {
	DatabasePath string
}

// NewStatusCommand creates a new StatusCommand
func NewStatusCommand() *StatusCommand {
	return &StatusCommand{}
}

// ParseFlags parses command line flags
func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s status [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show catalog totals and every checked-out book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the status command
func (cmd *StatusCommand) Run() error {
	service, cleanup, err := openService(cmd.DatabasePath, false, "")
	if err != nil {
		return err
	}
	defer cleanup()

	books, err := service.ListBooks()
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	shelves, err := service.ListShelves()
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}

	var checkedOut, unshelved int
	for i := range books {
		if books[i].IsCheckedOut() {
			checkedOut++
		}
		if books[i].HomeLocation == nil {
			unshelved++
		}
	}

	fmt.Printf("Books:    %d (%d checked out, %d without a shelf)\n", len(books), checkedOut, unshelved)
	fmt.Printf("Shelves:  %d\n", len(shelves))

	if checkedOut == 0 {
		return nil
	}

	fmt.Println("\nChecked out:")
	for i := range books {
		book := &books[i]
		if !book.IsCheckedOut() {
			continue
		}
		line := fmt.Sprintf("  %s to %s", book.Title, book.CheckedOutTo)
		if book.CheckedOutDate != nil {
			line += fmt.Sprintf(" since %s", book.CheckedOutDate.Format("2006-01-02"))
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	return nil
}
