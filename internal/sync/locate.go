package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/clipsync/internal/notion"
)

// DatabaseRef is the run-scoped handle on the target database: the
// normalized identifier plus the data source ids the database exposed at
// startup. It is built once per run and threaded into every lookup.
type DatabaseRef struct {
	ID            string
	compactID     string
	dataSourceIDs []string
}

// ResolveDatabase normalizes the configured database identifier and caches
// the database's data source ids. An unparseable identifier is fatal for
// the run; a failed data source fetch is not, since membership can still
// be verified against the database id itself.
func ResolveDatabase(ctx context.Context, store RemoteStore, rawID string) (*DatabaseRef, error) {
	id, err := notion.NormalizeID(rawID)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}

	ref := &DatabaseRef{
		ID:        id,
		compactID: notion.CompactID(id),
	}

	db, err := store.GetDatabase(ctx, id)
	if err != nil {
		return ref, nil
	}
	for _, ds := range db.DataSources {
		if ds.ID != "" {
			ref.dataSourceIDs = append(ref.dataSourceIDs, notion.CompactID(ds.ID))
		}
	}

	return ref, nil
}

// Contains reports whether a page's parent places it inside this database,
// accepting either the database id or one of its data source ids; the
// store may report membership in either form.
func (r *DatabaseRef) Contains(parent notion.Parent) bool {
	if parent.DatabaseID != "" && notion.CompactID(parent.DatabaseID) == r.compactID {
		return true
	}
	if parent.DataSourceID != "" {
		compact := notion.CompactID(parent.DataSourceID)
		for _, ds := range r.dataSourceIDs {
			if compact == ds {
				return true
			}
		}
	}
	return false
}

// LookupError is a soft failure while locating a book's page. Callers
// treat it as "not found" so a sync run degrades to CREATE instead of
// aborting, but the cause is preserved for reporting.
type LookupError struct {
	Title string
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("locate %q: %v", e.Title, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Locator finds the existing page for a book title inside the target
// database, tolerating the inconsistent identifier formats the search
// endpoint returns.
type Locator struct {
	store RemoteStore
	db    *DatabaseRef
}

// NewLocator creates a Locator bound to one database.
func NewLocator(store RemoteStore, db *DatabaseRef) *Locator {
	return &Locator{store: store, db: db}
}

// Locate returns the first page in the database whose title equals the
// query under case-insensitive, trimmed comparison, or nil when none
// exists. Search results are drained across cursors before giving up.
// Errors on individual candidates are swallowed; one bad candidate must
// never abort the search. A failure of the search itself comes back as a
// *LookupError.
func (l *Locator) Locate(ctx context.Context, title string) (*notion.Page, error) {
	cursor := ""
	for {
		resp, err := l.store.SearchPages(ctx, title, cursor)
		if err != nil {
			return nil, &LookupError{Title: title, Err: err}
		}

		for _, result := range resp.Results {
			if result.Object != "page" || result.ID == "" {
				continue
			}

			// The search index is approximate, so every candidate is
			// re-fetched and verified.
			page, err := l.store.GetPage(ctx, result.ID)
			if err != nil {
				continue
			}
			if !l.db.Contains(page.Parent) {
				continue
			}
			if titlesEqual(page.TitlePropertyText(notion.PropTitle), title) {
				return page, nil
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return nil, nil
		}
		cursor = resp.NextCursor
	}
}

func titlesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
