package sync

import (
	"strings"

	"github.com/mrlokans/clipsync/internal/entities"
)

// Record is one clipping with its derived identity. Records are built once
// during normalization and immutable afterwards.
type Record struct {
	Clipping entities.Clipping
	Identity string
}

// NormalizeResult is the outcome of deduplicating one book's clippings.
type NormalizeResult struct {
	Records []Record
	// LastDate is the date of the last record kept in source order. It is
	// the anchor for the "Last Highlighted" property and intentionally not
	// the chronologically latest date.
	LastDate          string
	DuplicatesRemoved int
}

// identityTextRunes is how much of the normalized text participates in a
// clipping's identity.
const identityTextRunes = 50

// Identity derives the deduplication and matching key for a clipping. It
// is deterministic over (text, location, page): the trimmed, lower-cased
// text truncated to 50 runes, joined with the raw location and page
// strings.
func Identity(text, location, page string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if runes := []rune(t); len(runes) > identityTextRunes {
		t = string(runes[:identityTextRunes])
	}
	return strings.TrimSpace(t + "|" + location + "|" + page)
}

// Normalize deduplicates one book's clippings in source order. The first
// occurrence of an identity wins; later repeats are dropped and counted.
func Normalize(clippings []entities.Clipping) NormalizeResult {
	var result NormalizeResult
	seen := make(map[string]struct{}, len(clippings))

	for _, c := range clippings {
		id := Identity(c.Text, c.Location, c.Page)

		if _, dup := seen[id]; dup {
			result.DuplicatesRemoved++
			continue
		}
		seen[id] = struct{}{}

		result.Records = append(result.Records, Record{Clipping: c, Identity: id})
		result.LastDate = c.Date
	}

	return result
}
