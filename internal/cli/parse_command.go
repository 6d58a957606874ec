package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/clipsync/internal/config"
	"github.com/mrlokans/clipsync/internal/sync"
)

// ParseCommand parses a clippings file and reports what a sync would do,
// without touching the remote database.
type ParseCommand struct {
	ClippingsPath string

	cfg *config.Config
}

func NewParseCommand(cfg *config.Config) *ParseCommand {
	return &ParseCommand{cfg: cfg}
}

func (cmd *ParseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", cmd.cfg.Kindle.ClippingsPath, "Path to Kindle 'My Clippings.txt' file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s parse [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parse a Kindle 'My Clippings.txt' file and report its contents without syncing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *ParseCommand) Run() error {
	books, err := loadBooks(cmd.ClippingsPath)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No books with highlights found in clippings file")
		return nil
	}

	for i, book := range books {
		res := sync.Normalize(book.Clippings)
		fmt.Printf("%d. %s\n", i+1, book.TitleAndAuthor())
		fmt.Printf("   %d highlights", len(res.Records))
		if res.DuplicatesRemoved > 0 {
			fmt.Printf(" (%d duplicates would be removed)", res.DuplicatesRemoved)
		}
		fmt.Println()
		if res.LastDate != "" {
			fmt.Printf("   last highlighted: %s\n", res.LastDate)
		}
	}

	return nil
}
