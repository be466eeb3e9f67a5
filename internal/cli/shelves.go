package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookwyrms/hoard/internal/config"
)

// ShelvesCommand lists the registered shelves and, optionally, the books
// sitting on each.
type ShelvesCommand struct {
	DatabasePath string
	WithBooks    bool
}

// NewShelvesCommand creates a new ShelvesCommand
func NewShelvesCommand() *ShelvesCommand {
	return &ShelvesCommand{}
}

// ParseFlags parses command line flags
func (cmd *ShelvesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("shelves", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.BoolVar(&cmd.WithBooks, "books", false, "Also list the books on each shelf in reading order")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s shelves [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List all registered bookshelves.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the shelves command
func (cmd *ShelvesCommand) Run() error {
	service, cleanup, err := openService(cmd.DatabasePath, false, "")
	if err != nil {
		return err
	}
	defer cleanup()

	shelves, err := service.ListShelves()
	if err != nil {
		return fmt.Errorf("list shelves: %w", err)
	}

	if len(shelves) == 0 {
		fmt.Println("No shelves registered.")
		return nil
	}

	for i := range shelves {
		shelf := &shelves[i]
		fmt.Println(shelf)

		if !cmd.WithBooks {
			continue
		}
		books, err := service.BooksOnShelf(shelf.Location, shelf.Name)
		if err != nil {
			return fmt.Errorf("books on %s/%s: %w", shelf.Location, shelf.Name, err)
		}
		for j := range books {
			book := &books[j]
			fmt.Printf("  %s  %s\n", book.HomeLocation, book.Title)
		}
	}
	return nil
}
