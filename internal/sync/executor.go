package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/mrlokans/clipsync/internal/entities"
	"github.com/mrlokans/clipsync/internal/kindle"
	"github.com/mrlokans/clipsync/internal/notion"
)

// NoCoverImageURL is the placeholder attached when no cover can be found.
const NoCoverImageURL = "https://via.placeholder.com/150x200?text=No%20Cover"

// Config wires an Executor. Zero values fall back to sensible defaults:
// CountEquality detection, stdout output and the wall clock.
type Config struct {
	Covers     CoverFinder
	Render     RenderOptions
	BookCovers bool
	Detector   ChangeDetector
	Out        io.Writer
	Now        func() time.Time
}

// Executor reconciles books against the remote database. It is the only
// component with side effects: everything it decides comes from the pure
// normalize/locate/read/decide/render pipeline.
type Executor struct {
	store    RemoteStore
	db       *DatabaseRef
	locator  *Locator
	covers   CoverFinder
	render   RenderOptions
	useCover bool
	detector ChangeDetector
	out      io.Writer
	now      func() time.Time
}

// NewExecutor creates an Executor bound to one database.
func NewExecutor(store RemoteStore, db *DatabaseRef, cfg Config) *Executor {
	e := &Executor{
		store:    store,
		db:       db,
		locator:  NewLocator(store, db),
		covers:   cfg.Covers,
		render:   cfg.Render,
		useCover: cfg.BookCovers,
		detector: cfg.Detector,
		out:      cfg.Out,
		now:      cfg.Now,
	}
	if e.detector == nil {
		e.detector = CountEquality{}
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Run reconciles every book sequentially. Per-book failures are reported
// and never stop the run; the returned error only summarizes how many
// books failed.
func (e *Executor) Run(ctx context.Context, books []entities.Book) error {
	fmt.Fprintf(e.out, "Initiating transfer...\n\n")

	var failed int
	for _, book := range books {
		fmt.Fprintln(e.out, book.TitleAndAuthor())

		message, err := e.SyncBook(ctx, book)
		if err != nil {
			failed++
			fmt.Fprintf(e.out, "  %s %v\n\n", color.RedString("Error:"), err)
			continue
		}
		if message != "" {
			fmt.Fprintln(e.out, message)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d books failed to sync", failed, len(books))
	}
	return nil
}

// SyncBook reconciles a single book and returns its status message. An
// empty message means the book had nothing to sync.
func (e *Executor) SyncBook(ctx context.Context, book entities.Book) (string, error) {
	res := Normalize(book.Clippings)
	if res.DuplicatesRemoved > 0 {
		fmt.Fprintf(e.out, "  Removed %d duplicate highlight(s).\n", res.DuplicatesRemoved)
	}
	if len(res.Records) == 0 {
		return "", nil
	}

	remote := e.readRemoteState(ctx, book.Title)

	switch Decide(remote, res.Records, e.detector) {
	case Create:
		return e.create(ctx, book, res)
	case NoChange:
		return e.touchTimestamp(ctx, remote)
	default:
		return e.replace(ctx, book, res, remote)
	}
}

// readRemoteState locates the book's page and reconstructs its synced
// state. All failures here are soft: a failed lookup degrades to "not
// found" so the book is created rather than the run aborted.
func (e *Executor) readRemoteState(ctx context.Context, title string) *RemoteState {
	page, err := e.locator.Locate(ctx, title)
	if err != nil {
		fmt.Fprintf(e.out, "  Note: %v; treating as not yet synced.\n", err)
		return nil
	}
	if page == nil {
		return nil
	}

	identities, err := ReadExistingIdentities(ctx, e.store, page.ID)
	if err != nil {
		// Keep whatever was recovered before the failure.
		fmt.Fprintf(e.out, "  Note: could not read existing highlights: %v\n", err)
	}

	return &RemoteState{
		PageID:        page.ID,
		DeclaredCount: page.NumberPropertyValue(notion.PropHighlights),
		Identities:    identities,
		Cover:         page.Cover,
	}
}

func (e *Executor) create(ctx context.Context, book entities.Book, res NormalizeResult) (string, error) {
	count := len(res.Records)
	fmt.Fprintf(e.out, "  Adding %d highlights...", count)

	page, err := e.store.CreatePage(ctx, &notion.CreatePageRequest{
		Parent:     notion.Parent{Type: "database_id", DatabaseID: e.db.ID},
		Properties: e.pageProperties(book, res),
	})
	if err != nil {
		fmt.Fprintln(e.out)
		return "", fmt.Errorf("create page: %w", err)
	}

	if err := e.writeBlocks(ctx, page.ID, res.Records); err != nil {
		fmt.Fprintln(e.out)
		return "", err
	}
	fmt.Fprintf(e.out, " %s\n", color.GreenString("✓"))

	if e.useCover && page.Cover == nil {
		e.attachCover(ctx, page.ID, book)
	}

	return fmt.Sprintf("Added %d highlights.\n", count), nil
}

func (e *Executor) touchTimestamp(ctx context.Context, remote *RemoteState) (string, error) {
	_, err := e.store.UpdatePage(ctx, remote.PageID, &notion.UpdatePageRequest{
		Properties: notion.Properties{
			notion.PropLastSynced: notion.DateProperty(e.now().Format(time.RFC3339)),
		},
	})
	if err != nil {
		fmt.Fprintf(e.out, "  Warning: could not update page metadata: %v\n", err)
	}

	fmt.Fprintln(e.out, "  No changes needed.")
	return "No changes needed.\n", nil
}

func (e *Executor) replace(ctx context.Context, book entities.Book, res NormalizeResult, remote *RemoteState) (string, error) {
	count := len(res.Records)
	fmt.Fprintf(e.out, "  Updating %d highlights...", count)

	// Content cannot be patched in place: the old page is archived and a
	// fresh one created, carrying over the cover when one was set.
	var preserved *notion.FileObject
	if e.useCover && remote.Cover != nil && remote.Cover.External != nil && remote.Cover.External.URL != "" {
		preserved = remote.Cover
	}

	archived := true
	if _, err := e.store.UpdatePage(ctx, remote.PageID, &notion.UpdatePageRequest{Archived: &archived}); err != nil {
		fmt.Fprintln(e.out)
		return "", fmt.Errorf("archive page: %w", err)
	}

	page, err := e.store.CreatePage(ctx, &notion.CreatePageRequest{
		Parent:     notion.Parent{Type: "database_id", DatabaseID: e.db.ID},
		Properties: e.pageProperties(book, res),
	})
	if err != nil {
		fmt.Fprintln(e.out)
		return "", fmt.Errorf("recreate page: %w", err)
	}

	if preserved != nil {
		if _, err := e.store.UpdatePage(ctx, page.ID, &notion.UpdatePageRequest{Cover: preserved}); err != nil {
			fmt.Fprintf(e.out, "  Warning: could not restore cover: %v\n", err)
		}
	}

	if err := e.writeBlocks(ctx, page.ID, res.Records); err != nil {
		fmt.Fprintln(e.out)
		return "", err
	}
	fmt.Fprintf(e.out, " %s\n", color.GreenString("✓"))

	if e.useCover && preserved == nil {
		e.attachCover(ctx, page.ID, book)
	}

	diff := count - remote.DeclaredCount
	switch {
	case diff > 0:
		return fmt.Sprintf("Added %d new highlights. Total: %d.\n", diff, count), nil
	case diff < 0:
		return fmt.Sprintf("Removed %d highlights. Total: %d.\n", -diff, count), nil
	default:
		return fmt.Sprintf("Updated highlights. Total: %d.\n", count), nil
	}
}

// writeBlocks renders the records and appends them in request-sized
// batches. A mid-batch failure is surfaced as-is; already written batches
// are not rolled back, so the page may be left with partial content.
func (e *Executor) writeBlocks(ctx context.Context, pageID string, records []Record) error {
	blocks := RenderAll(records, e.render)
	for _, batch := range Batches(blocks, notion.MaxBlocksPerRequest) {
		if err := e.store.AppendBlockChildren(ctx, pageID, batch); err != nil {
			return fmt.Errorf("append blocks: %w", err)
		}
	}
	return nil
}

// attachCover resolves a cover image for the book and sets it on the
// page. Lookup failures and empty results both fall back to the
// placeholder; neither is a hard error.
func (e *Executor) attachCover(ctx context.Context, pageID string, book entities.Book) {
	coverURL := ""
	if e.covers != nil {
		if found, err := e.covers.FindCoverURL(ctx, book.Title, book.Author); err == nil {
			coverURL = found
		}
	}

	if coverURL == "" {
		coverURL = NoCoverImageURL
		fmt.Fprintf(e.out, "%s Book cover couldn't be found. Please replace the placeholder image with the original book cover manually.\n", color.RedString("×"))
	} else {
		fmt.Fprintf(e.out, "%s Added book cover.\n", color.GreenString("✓"))
	}

	if _, err := e.store.UpdatePage(ctx, pageID, &notion.UpdatePageRequest{Cover: notion.ExternalCover(coverURL)}); err != nil {
		fmt.Fprintf(e.out, "  Warning: could not set cover: %v\n", err)
	}
}

// pageProperties builds the property set for a new book page.
func (e *Executor) pageProperties(book entities.Book, res NormalizeResult) notion.Properties {
	props := notion.Properties{
		notion.PropTitle:      notion.TitleProperty(book.Title),
		notion.PropAuthor:     notion.RichTextProperty(book.Author),
		notion.PropHighlights: notion.NumberProperty(float64(len(res.Records))),
		notion.PropLastSynced: notion.DateProperty(e.now().Format(time.RFC3339)),
	}

	if last := kindle.ParseDate(res.LastDate); !last.IsZero() {
		props[notion.PropLastHighlighted] = notion.DateProperty(last.Format(time.RFC3339))
	}

	return props
}
