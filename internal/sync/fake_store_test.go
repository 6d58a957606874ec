package sync

import (
	"context"
	"fmt"

	"github.com/mrlokans/clipsync/internal/notion"
)

// fakeStore is an in-memory RemoteStore recording every mutation.
type fakeStore struct {
	searchPages   []notion.SearchResponse
	searchErr     error
	searchCalls   int
	pages         map[string]*notion.Page
	getPageErr    map[string]error
	database      *notion.Database
	databaseErr   error
	blockPages    map[string][]notion.BlockChildrenResponse
	blockErrAfter map[string]error
	blockCalls    map[string]int

	created   []*notion.CreatePageRequest
	createErr error
	updates   []fakeUpdate
	updateErr map[string]error
	appended  map[string][][]notion.Block
	appendErr error
}

type fakeUpdate struct {
	pageID string
	req    *notion.UpdatePageRequest
}

func (f *fakeStore) SearchPages(_ context.Context, _, _ string) (*notion.SearchResponse, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.searchCalls >= len(f.searchPages) {
		return &notion.SearchResponse{}, nil
	}
	resp := f.searchPages[f.searchCalls]
	f.searchCalls++
	return &resp, nil
}

func (f *fakeStore) GetPage(_ context.Context, pageID string) (*notion.Page, error) {
	if err := f.getPageErr[pageID]; err != nil {
		return nil, err
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %s not found", pageID)
	}
	return page, nil
}

func (f *fakeStore) CreatePage(_ context.Context, req *notion.CreatePageRequest) (*notion.Page, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &notion.Page{ID: fmt.Sprintf("created-%d", len(f.created))}, nil
}

func (f *fakeStore) UpdatePage(_ context.Context, pageID string, req *notion.UpdatePageRequest) (*notion.Page, error) {
	if err := f.updateErr[pageID]; err != nil {
		return nil, err
	}
	f.updates = append(f.updates, fakeUpdate{pageID: pageID, req: req})
	if page, ok := f.pages[pageID]; ok {
		return page, nil
	}
	return &notion.Page{ID: pageID}, nil
}

func (f *fakeStore) GetDatabase(_ context.Context, _ string) (*notion.Database, error) {
	if f.databaseErr != nil {
		return nil, f.databaseErr
	}
	if f.database == nil {
		return &notion.Database{}, nil
	}
	return f.database, nil
}

func (f *fakeStore) ListBlockChildren(_ context.Context, blockID, _ string) (*notion.BlockChildrenResponse, error) {
	if f.blockCalls == nil {
		f.blockCalls = make(map[string]int)
	}
	idx := f.blockCalls[blockID]
	pages := f.blockPages[blockID]
	if idx >= len(pages) {
		if err := f.blockErrAfter[blockID]; err != nil {
			return nil, err
		}
		return &notion.BlockChildrenResponse{}, nil
	}
	f.blockCalls[blockID]++
	return &pages[idx], nil
}

func (f *fakeStore) AppendBlockChildren(_ context.Context, blockID string, children []notion.Block) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.appended == nil {
		f.appended = make(map[string][][]notion.Block)
	}
	f.appended[blockID] = append(f.appended[blockID], children)
	return nil
}

// archivedPages lists the page ids archived through UpdatePage.
func (f *fakeStore) archivedPages() []string {
	var ids []string
	for _, u := range f.updates {
		if u.req.Archived != nil && *u.req.Archived {
			ids = append(ids, u.pageID)
		}
	}
	return ids
}

// coverSet returns the last cover URL set on the given page, or "".
func (f *fakeStore) coverSet(pageID string) string {
	url := ""
	for _, u := range f.updates {
		if u.pageID == pageID && u.req.Cover != nil && u.req.Cover.External != nil {
			url = u.req.Cover.External.URL
		}
	}
	return url
}

// fakeCovers is a canned CoverFinder.
type fakeCovers struct {
	url string
	err error
}

func (f *fakeCovers) FindCoverURL(_ context.Context, _, _ string) (string, error) {
	return f.url, f.err
}
