package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/bookwyrms/hoard/internal/config"
)

// ReindexCommand rebuilds the search index from the books relation. Useful
// after restoring a database from backup.
type ReindexCommand struct {
	DatabasePath string
}

// NewReindexCommand creates a new ReindexCommand
func NewReindexCommand() *ReindexCommand {
	return &ReindexCommand{}
}

// ParseFlags parses command line flags
func (cmd *ReindexCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reindex [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Rebuild the search index from the stored books.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the reindex command
func (cmd *ReindexCommand) Run() error {
	service, cleanup, err := openService(cmd.DatabasePath, false, "")
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := service.RebuildSearchIndex()
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	fmt.Printf("Indexed %d books\n", count)
	return nil
}
