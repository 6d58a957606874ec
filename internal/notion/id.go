package notion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// compactIDPattern matches a 32 character hex run, the dashless UUID form
// Notion uses in page and database URLs.
var compactIDPattern = regexp.MustCompile(`[0-9a-fA-F]{32}`)

// NormalizeID converts the identifier formats Notion hands out (dashed
// UUIDs, 32-hex compact ids and URLs embedding either) into the canonical
// dashed lower-case UUID form the API accepts.
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidID)
	}

	if id, err := uuid.Parse(s); err == nil {
		return id.String(), nil
	}

	// Fall back to extracting a compact id from a URL or slugged string.
	if m := compactIDPattern.FindString(s); m != "" {
		if id, err := uuid.Parse(dashed(m)); err == nil {
			return id.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidID, raw)
}

// CompactID returns the dashless lower-case form of an identifier, the
// shape used when comparing ids that may arrive in either format.
func CompactID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

func dashed(compact string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		compact[0:8], compact[8:12], compact[12:16], compact[16:20], compact[20:32])
}
