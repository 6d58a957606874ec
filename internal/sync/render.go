package sync

import (
	"strings"

	"github.com/mrlokans/clipsync/internal/notion"
)

// Markers rendered into block text. The state reader keys on these to
// recover clipping boundaries and metadata, so renderer and reader must
// agree on them exactly.
const (
	pageMarker     = "📄 Page"
	locationMarker = "📍 Location"
	dateMarker     = "📅"
	noteMarker     = "💡 NOTE"
	noteIcon       = "💡"
	metaSeparator  = " • "
)

// RenderOptions controls which metadata is rendered under each clipping.
type RenderOptions struct {
	ShowLocation      bool
	ShowHighlightDate bool
}

// RenderClipping converts one record into its Notion block representation:
// a quote block for highlights or a callout block for notes, always
// followed by exactly one divider. The state reader relies on the divider
// to recover clipping boundaries on later runs.
func RenderClipping(rec Record, opts RenderOptions) []notion.Block {
	c := rec.Clipping

	var parts []string
	if opts.ShowLocation {
		if c.Page != "" {
			parts = append(parts, pageMarker+" "+c.Page)
		}
		if c.Location != "" {
			parts = append(parts, locationMarker+" "+c.Location)
		}
	}
	if opts.ShowHighlightDate && c.Date != "" {
		parts = append(parts, dateMarker+" "+c.Date)
	}
	metadata := strings.Join(parts, metaSeparator)

	var content notion.Block
	if c.IsNote {
		body := noteMarker + "\n\n" + c.Text
		if metadata != "" {
			body += "\n\n" + metadata
		}
		content = notion.CalloutBlock(body, noteIcon)
	} else {
		body := c.Text
		if metadata != "" {
			body += "\n\n" + metadata
		}
		content = notion.QuoteBlock(body)
	}

	return []notion.Block{content, notion.DividerBlock()}
}

// RenderAll renders every record in order into one flat block sequence.
func RenderAll(records []Record, opts RenderOptions) []notion.Block {
	blocks := make([]notion.Block, 0, len(records)*2)
	for _, rec := range records {
		blocks = append(blocks, RenderClipping(rec, opts)...)
	}
	return blocks
}

// Batches splits a block sequence into write batches no larger than the
// per-request limit, preserving order across batch boundaries.
func Batches(blocks []notion.Block, size int) [][]notion.Block {
	if size <= 0 || len(blocks) == 0 {
		return nil
	}
	batches := make([][]notion.Block, 0, (len(blocks)+size-1)/size)
	for start := 0; start < len(blocks); start += size {
		end := start + size
		if end > len(blocks) {
			end = len(blocks)
		}
		batches = append(batches, blocks[start:end])
	}
	return batches
}
