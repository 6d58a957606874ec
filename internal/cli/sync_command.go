package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/mrlokans/clipsync/internal/config"
	"github.com/mrlokans/clipsync/internal/covers"
	"github.com/mrlokans/clipsync/internal/entities"
	"github.com/mrlokans/clipsync/internal/kindle"
	"github.com/mrlokans/clipsync/internal/notion"
	"github.com/mrlokans/clipsync/internal/sync"
)

// SyncCommand parses a Kindle clippings file and synchronizes every book
// into the configured Notion database.
type SyncCommand struct {
	ClippingsPath string
	Token         string
	DatabaseID    string
	NoLocation    bool
	NoDate        bool
	NoCover       bool
	Verbose       bool

	cfg *config.Config
}

func NewSyncCommand(cfg *config.Config) *SyncCommand {
	return &SyncCommand{cfg: cfg}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.ClippingsPath, "file", cmd.cfg.Kindle.ClippingsPath, "Path to Kindle 'My Clippings.txt' file")
	fs.StringVar(&cmd.Token, "token", "", "Notion integration token (defaults to NOTION_TOKEN)")
	fs.StringVar(&cmd.DatabaseID, "database", "", "Notion database id or URL (defaults to NOTION_DATABASE_ID)")
	fs.BoolVar(&cmd.NoLocation, "no-location", false, "Do not render page/location metadata under highlights")
	fs.BoolVar(&cmd.NoDate, "no-date", false, "Do not render highlight dates")
	fs.BoolVar(&cmd.NoCover, "no-cover", false, "Do not resolve and attach book covers")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose output")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sync highlights from a Kindle 'My Clippings.txt' file to a Notion database.\n\n")
		fmt.Fprintf(os.Stderr, "The clippings file is typically found at:\n")
		fmt.Fprintf(os.Stderr, "  /Volumes/Kindle/documents/My Clippings.txt\n\n")
		fmt.Fprintf(os.Stderr, "Credentials are read from the NOTION_TOKEN and NOTION_DATABASE_ID environment\n")
		fmt.Fprintf(os.Stderr, "variables (or a local .env file) unless passed as flags.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Sync from a connected Kindle device:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -file \"/Volumes/Kindle/documents/My Clippings.txt\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Sync without cover images:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -file \"My Clippings.txt\" -no-cover\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Token == "" {
		cmd.Token = cmd.cfg.Notion.Token
	}
	if cmd.DatabaseID == "" {
		cmd.DatabaseID = cmd.cfg.Notion.DatabaseID
	}

	if cmd.Token == "" {
		return fmt.Errorf("notion token not provided: set NOTION_TOKEN or pass -token")
	}
	if cmd.DatabaseID == "" {
		return fmt.Errorf("notion database id not provided: set NOTION_DATABASE_ID or pass -database")
	}

	return nil
}

func (cmd *SyncCommand) Run() error {
	ctx := context.Background()

	books, err := loadBooks(cmd.ClippingsPath)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Println("No books with highlights found in clippings file")
		return nil
	}

	totalClippings := 0
	for _, book := range books {
		totalClippings += len(book.Clippings)
	}
	fmt.Printf("Found %d books with %d total highlights\n\n", len(books), totalClippings)

	if cmd.Verbose {
		printBookList(books)
	}

	client := notion.NewClient(cmd.Token, notion.WithHTTPClient(&http.Client{
		Timeout: cmd.cfg.HTTP.Timeout,
	}))

	// An unresolvable database id is the one unrecoverable setup error;
	// everything past this point degrades per book instead of aborting.
	db, err := sync.ResolveDatabase(ctx, client, cmd.DatabaseID)
	if err != nil {
		return err
	}

	executor := sync.NewExecutor(client, db, sync.Config{
		Covers: covers.NewGoogleBooksClient(),
		Render: sync.RenderOptions{
			ShowLocation:      cmd.cfg.Display.Location && !cmd.NoLocation,
			ShowHighlightDate: cmd.cfg.Display.HighlightDate && !cmd.NoDate,
		},
		BookCovers: cmd.cfg.Display.BookCover && !cmd.NoCover,
	})

	return executor.Run(ctx, books)
}

func loadBooks(path string) ([]entities.Book, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("clippings file not found: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open clippings file: %w", err)
	}
	defer file.Close()

	parser := kindle.NewParser()
	books, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clippings: %w", err)
	}
	return books, nil
}

func printBookList(books []entities.Book) {
	fmt.Println("=== Books Found ===")
	for i, book := range books {
		author := book.Author
		if author == "" {
			author = "(no author)"
		}
		fmt.Printf("%d. %q by %s (%d highlights)\n", i+1, book.Title, author, len(book.Clippings))
	}
	fmt.Println()
}
