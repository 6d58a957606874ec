package sync

import (
	"context"

	"github.com/mrlokans/clipsync/internal/notion"
)

// RemoteStore is the slice of the Notion client the engine depends on.
// *notion.Client satisfies it; tests substitute fakes.
type RemoteStore interface {
	SearchPages(ctx context.Context, query, cursor string) (*notion.SearchResponse, error)
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	CreatePage(ctx context.Context, req *notion.CreatePageRequest) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, req *notion.UpdatePageRequest) (*notion.Page, error)
	GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	ListBlockChildren(ctx context.Context, blockID, cursor string) (*notion.BlockChildrenResponse, error)
	AppendBlockChildren(ctx context.Context, blockID string, children []notion.Block) error
}

// CoverFinder resolves a cover image URL for a book. An empty URL with a
// nil error means no cover was found.
type CoverFinder interface {
	FindCoverURL(ctx context.Context, title, author string) (string, error)
}
