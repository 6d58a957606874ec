package sync

import "github.com/mrlokans/clipsync/internal/notion"

// Decision is the reconciliation outcome for one book.
type Decision int

const (
	// Create a new page; no remote representation exists.
	Create Decision = iota
	// NoChange leaves content untouched and only refreshes the
	// "Last Synced" timestamp.
	NoChange
	// Replace archives the existing page and recreates it with the
	// current clippings.
	Replace
)

func (d Decision) String() string {
	switch d {
	case Create:
		return "create"
	case NoChange:
		return "no-change"
	case Replace:
		return "replace"
	}
	return "unknown"
}

// RemoteState is the reconstructed state of a book's existing page.
type RemoteState struct {
	PageID        string
	DeclaredCount int
	Identities    map[string]struct{}
	Cover         *notion.FileObject
}

// ChangeDetector decides whether remote content is current for the given
// records. The comparison strategy is injected so the shipped count-based
// heuristic and a strict identity-set comparison share one policy.
type ChangeDetector interface {
	Unchanged(remote *RemoteState, records []Record) bool
}

// CountEquality treats remote content as current when the declared
// highlight count matches the current one. Two different clipping sets of
// equal size are therefore treated as unchanged.
type CountEquality struct{}

func (CountEquality) Unchanged(remote *RemoteState, records []Record) bool {
	return remote.DeclaredCount == len(records)
}

// IdentitySetEquality treats remote content as current only when the
// reconstructed identity set matches the current records exactly.
type IdentitySetEquality struct{}

func (IdentitySetEquality) Unchanged(remote *RemoteState, records []Record) bool {
	if len(remote.Identities) != len(records) {
		return false
	}
	for _, rec := range records {
		if _, ok := remote.Identities[rec.Identity]; !ok {
			return false
		}
	}
	return true
}

// Decide maps the remote state and current records to a reconciliation
// decision. A nil remote means no page was found.
func Decide(remote *RemoteState, records []Record, detector ChangeDetector) Decision {
	if remote == nil {
		return Create
	}
	if detector.Unchanged(remote, records) {
		return NoChange
	}
	return Replace
}
