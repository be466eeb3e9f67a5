package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bookwyrms/hoard/internal/config"
	"github.com/bookwyrms/hoard/internal/library"
)

// AddCommand catalogs a single book, optionally looking up metadata by ISBN
// and placing the book on a shelf cell.
type AddCommand struct {
	DatabasePath string
	ISBN         string
	Title        string
	Authors      string
	Location     string
	Notes        string
	NoLookup     bool
}

// NewAddCommand creates a new AddCommand
func NewAddCommand() *AddCommand {
	return &AddCommand{}
}

// ParseFlags parses command line flags
func (cmd *AddCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")
	fs.StringVar(&cmd.ISBN, "isbn", "", "ISBN-10 or ISBN-13 (omit for books without one)")
	fs.StringVar(&cmd.Title, "title", "", "Book title (required when the ISBN lookup finds nothing)")
	fs.StringVar(&cmd.Authors, "authors", "", "Comma-separated author names")
	fs.StringVar(&cmd.Location, "location", "", "Home shelf cell, e.g. 'Library/Main/C2R1'")
	fs.StringVar(&cmd.Notes, "notes", "", "Free-form notes")
	fs.BoolVar(&cmd.NoLookup, "no-lookup", false, "Skip the external metadata lookup")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s add [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add a book to the catalog. With an ISBN, missing fields are filled from\n")
		fmt.Fprintf(os.Stderr, "Google Books and OpenLibrary; without one the book gets a generated ID.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Add by ISBN and shelve it:\n")
		fmt.Fprintf(os.Stderr, "  %s add -isbn 9780134685991 -location 'Library/Main/C2R1'\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Add a book that has no ISBN:\n")
		fmt.Fprintf(os.Stderr, "  %s add -title \"Grandma's Recipe Binder\" -authors Family\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the add command
func (cmd *AddCommand) Run() error {
	service, cleanup, err := openService(cmd.DatabasePath, !cmd.NoLookup, "")
	if err != nil {
		return err
	}
	defer cleanup()

	input := library.AddBookInput{
		ISBN:     cmd.ISBN,
		Title:    cmd.Title,
		Location: cmd.Location,
		Notes:    cmd.Notes,
	}
	if cmd.Authors != "" {
		for _, author := range strings.Split(cmd.Authors, ",") {
			if trimmed := strings.TrimSpace(author); trimmed != "" {
				input.Authors = append(input.Authors, trimmed)
			}
		}
	}

	book, err := service.AddBook(context.Background(), input)
	if err != nil {
		return fmt.Errorf("add book: %w", err)
	}

	fmt.Printf("Added %s\n", book.Title)
	fmt.Printf("  ISBN: %s\n", book.ISBN)
	if len(book.Authors) > 0 {
		fmt.Printf("  Authors: %s\n", strings.Join(book.Authors, ", "))
	}
	if book.HomeLocation != nil {
		fmt.Printf("  Location: %s\n", book.HomeLocation)
	}
	return nil
}
