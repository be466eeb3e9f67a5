package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bookwyrms/hoard/internal/config"
)

// SearchCommand answers a free-text or ISBN query against the catalog.
type SearchCommand struct {
	DatabasePath string
	Limit        int
	query        string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand() *SearchCommand {
	return &SearchCommand{}
}

// ParseFlags parses command line flags
func (cmd *SearchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.IntVar(&cmd.Limit, "limit", 10, "Maximum number of results")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s search [options] <query>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Search the catalog. Query terms match as prefixes against titles,\n")
		fmt.Fprintf(os.Stderr, "authors, and descriptions; an exact ISBN returns that book alone.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s search algo\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s search 9780262046305\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.query = strings.Join(fs.Args(), " ")
	if strings.TrimSpace(cmd.query) == "" {
		fs.Usage()
		return fmt.Errorf("a query is required")
	}
	return nil
}

// Run executes the search command
func (cmd *SearchCommand) Run() error {
	service, cleanup, err := openService(cmd.DatabasePath, false, "")
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := service.SearchBooks(cmd.query, cmd.Limit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, res := range results {
		book := res.Book
		fmt.Printf("%d. %s", i+1, book.Title)
		if len(book.Authors) > 0 {
			fmt.Printf(" by %s", strings.Join(book.Authors, ", "))
		}
		fmt.Println()
		fmt.Printf("   ISBN: %s\n", book.ISBN)
		switch {
		case book.IsCheckedOut():
			fmt.Printf("   Checked out to %s\n", book.CheckedOutTo)
		case book.HomeLocation != nil:
			fmt.Printf("   Location: %s\n", book.HomeLocation)
		}
	}
	return nil
}
