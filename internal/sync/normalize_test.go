package sync

import (
	"strings"
	"testing"

	"github.com/mrlokans/clipsync/internal/entities"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		location string
		page     string
		expected string
	}{
		{
			name:     "simple",
			text:     "Great quote",
			location: "120-121",
			page:     "12",
			expected: "great quote|120-121|12",
		},
		{
			name:     "trims and lowercases",
			text:     "  Great Quote  ",
			location: "120-121",
			page:     "12",
			expected: "great quote|120-121|12",
		},
		{
			name:     "truncates to 50 runes",
			text:     strings.Repeat("a", 80),
			location: "1",
			page:     "",
			expected: strings.Repeat("a", 50) + "|1|",
		},
		{
			name:     "empty fields",
			text:     "text",
			location: "",
			page:     "",
			expected: "text||",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Identity(tt.text, tt.location, tt.page)
			if result != tt.expected {
				t.Errorf("Identity() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestIdentity_Deterministic(t *testing.T) {
	a := Identity("Some highlight text", "64-64", "8")
	b := Identity("Some highlight text", "64-64", "8")
	if a != b {
		t.Errorf("identity not deterministic: %q vs %q", a, b)
	}
}

func TestNormalize_KeepsFirstOccurrence(t *testing.T) {
	clippings := []entities.Clipping{
		{Text: "First quote", Location: "10", Page: "1", Date: "Monday, 01 January 2024 10:00:00 AM"},
		{Text: "Second quote", Location: "20", Page: "2", Date: "Monday, 01 January 2024 11:00:00 AM"},
		{Text: "First quote", Location: "10", Page: "1", Date: "Monday, 01 January 2024 12:00:00 PM"},
	}

	res := Normalize(clippings)

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.DuplicatesRemoved != 1 {
		t.Errorf("expected 1 duplicate removed, got %d", res.DuplicatesRemoved)
	}
	// Keep-first: the surviving record carries the first occurrence's date.
	if res.Records[0].Clipping.Date != "Monday, 01 January 2024 10:00:00 AM" {
		t.Errorf("expected first occurrence kept, got date %q", res.Records[0].Clipping.Date)
	}
}

func TestNormalize_CountsEveryRepeat(t *testing.T) {
	clippings := []entities.Clipping{
		{Text: "Same", Location: "10", Page: "1"},
		{Text: "Same", Location: "10", Page: "1"},
		{Text: "Same", Location: "10", Page: "1"},
	}

	res := Normalize(clippings)

	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if res.DuplicatesRemoved != 2 {
		t.Errorf("expected 2 duplicates removed, got %d", res.DuplicatesRemoved)
	}
}

func TestNormalize_DifferentLocationIsNotDuplicate(t *testing.T) {
	clippings := []entities.Clipping{
		{Text: "Same text", Location: "10", Page: "1"},
		{Text: "Same text", Location: "20", Page: "1"},
	}

	res := Normalize(clippings)

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.DuplicatesRemoved != 0 {
		t.Errorf("expected 0 duplicates removed, got %d", res.DuplicatesRemoved)
	}
}

func TestNormalize_LastDateIsLastKeptRecord(t *testing.T) {
	// The sync timestamp anchor is the date of the last record kept in
	// source order, not the chronologically latest date.
	clippings := []entities.Clipping{
		{Text: "A", Location: "1", Date: "Monday, 01 January 2024 10:00:00 PM"},
		{Text: "B", Location: "2", Date: "Monday, 01 January 2024 09:00:00 AM"},
		{Text: "A", Location: "1", Date: "Monday, 01 January 2024 11:00:00 PM"},
	}

	res := Normalize(clippings)

	if res.LastDate != "Monday, 01 January 2024 09:00:00 AM" {
		t.Errorf("expected last kept record's date, got %q", res.LastDate)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	res := Normalize(nil)

	if len(res.Records) != 0 {
		t.Errorf("expected no records, got %d", len(res.Records))
	}
	if res.LastDate != "" {
		t.Errorf("expected empty last date, got %q", res.LastDate)
	}
	if res.DuplicatesRemoved != 0 {
		t.Errorf("expected 0 duplicates removed, got %d", res.DuplicatesRemoved)
	}
}

func TestNormalize_PreservesSourceOrder(t *testing.T) {
	clippings := []entities.Clipping{
		{Text: "C", Location: "3"},
		{Text: "A", Location: "1"},
		{Text: "B", Location: "2"},
	}

	res := Normalize(clippings)

	texts := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		texts = append(texts, rec.Clipping.Text)
	}
	expected := []string{"C", "A", "B"}
	for i := range expected {
		if texts[i] != expected[i] {
			t.Fatalf("expected order %v, got %v", expected, texts)
		}
	}
}
