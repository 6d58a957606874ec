package sync

import (
	"context"
	"strings"

	"github.com/mrlokans/clipsync/internal/notion"
)

// ReadExistingIdentities reconstructs the set of clipping identities
// already represented on a page by re-parsing its rendered blocks. The
// block listing is drained across cursors. Malformed or unrecognized
// content never raises; a block that yields no usable identity simply
// contributes nothing to the set.
func ReadExistingIdentities(ctx context.Context, store RemoteStore, pageID string) (map[string]struct{}, error) {
	identities := make(map[string]struct{})
	var acc accumulator

	cursor := ""
	for {
		resp, err := store.ListBlockChildren(ctx, pageID, cursor)
		if err != nil {
			return identities, err
		}

		for _, block := range resp.Results {
			acc.consume(block, identities)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	// A page whose block stream ends without a trailing divider still has
	// one pending clipping to flush.
	acc.flush(identities)

	return identities, nil
}

// IdentitiesFromBlocks recovers clipping identities from an in-memory
// block sequence. Used directly in tests and by ReadExistingIdentities
// per listing page.
func IdentitiesFromBlocks(blocks []notion.Block) map[string]struct{} {
	identities := make(map[string]struct{})
	var acc accumulator
	for _, block := range blocks {
		acc.consume(block, identities)
	}
	acc.flush(identities)
	return identities
}

// accumulator carries the per-clipping parse state between blocks: the
// most recent content text and the most recently seen location and page
// strings. A divider closes out the pending clipping.
type accumulator struct {
	text     string
	location string
	page     string
}

func (a *accumulator) consume(block notion.Block, identities map[string]struct{}) {
	if block.Type == notion.BlockTypeDivider {
		a.flush(identities)
		return
	}

	text := block.PlainTextContent()
	if text == "" {
		return
	}

	if loc, ok := extractMarkerValue(text, locationMarker, metaSeparator); ok {
		a.location = loc
	} else if loc, ok := extractMarkerValue(text, "Location:", ","); ok {
		a.location = loc
	}

	if page, ok := extractMarkerValue(text, pageMarker, metaSeparator); ok {
		a.page = page
	} else if page, ok := extractMarkerValue(text, "Page:", ","); ok {
		a.page = page
	}

	if main := stripMetadata(text); main != "" {
		a.text = main
	}
}

func (a *accumulator) flush(identities map[string]struct{}) {
	if a.text != "" {
		if id := Identity(a.text, a.location, a.page); id != "" {
			identities[id] = struct{}{}
		}
	}
	a.text = ""
	a.location = ""
	a.page = ""
}

// extractMarkerValue pulls the substring following marker up to the next
// stop sequence (or end of text), trimmed. Reports false when the marker
// is absent so the caller can fall back to older rendered formats.
func extractMarkerValue(text, marker, stop string) (string, bool) {
	_, after, found := strings.Cut(text, marker)
	if !found {
		return "", false
	}
	if before, _, cut := strings.Cut(after, stop); cut {
		after = before
	}
	value := strings.TrimSpace(after)
	if value == "" {
		return "", false
	}
	return value, true
}

// metadataIndicators mark lines that carry rendered metadata rather than
// clipping text. Both the current emoji markers and older plain-text
// labels are recognized.
var metadataIndicators = []string{
	"📄", "📍", "📅", "Page:", "Location:", "Date Added:", "_",
}

// stripMetadata removes the note marker and any metadata lines, returning
// the clipping text a block contributes.
func stripMetadata(text string) string {
	// Leading note marker from callout bodies.
	if idx := strings.Index(text, noteMarker+"\n\n"); idx != -1 {
		text = text[idx+len(noteMarker+"\n\n"):]
	} else if text == noteMarker {
		return ""
	}

	lines := strings.Split(text, "\n")
	clean := lines[:0]
	for _, line := range lines {
		if isMetadataLine(line) {
			continue
		}
		clean = append(clean, line)
	}
	return strings.TrimSpace(strings.Join(clean, "\n"))
}

func isMetadataLine(line string) bool {
	for _, indicator := range metadataIndicators {
		if strings.Contains(line, indicator) {
			return true
		}
	}
	return false
}
