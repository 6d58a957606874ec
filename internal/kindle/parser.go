package kindle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/mrlokans/clipsync/internal/entities"
)

// Entry types in Kindle clippings
type EntryType string

const (
	EntryTypeHighlight EntryType = "highlight"
	EntryTypeNote      EntryType = "note"
	EntryTypeBookmark  EntryType = "bookmark"
)

// ClippingEntry represents a single parsed entry from My Clippings.txt.
// Page and Location keep the raw range strings from the metadata line
// ("12", "120-121"); Date keeps the source-formatted timestamp after
// "Added on ".
type ClippingEntry struct {
	Title    string
	Author   string
	Type     EntryType
	Page     string
	Location string
	Date     string
	Text     string
}

// Parser parses Kindle My Clippings.txt format
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

const entrySeparator = "=========="

// Regex patterns for parsing metadata lines
var (
	// Matches: "- Your Highlight on page 8 | Location 64-64 | Added on Tuesday, April 15, 2025 10:16:21 PM"
	// or: "- Your Note on page 31 | Location 307 | Added on Tuesday, April 15, 2025 11:33:26 PM"
	// or: "- Your Highlight at location 784-785 | Added on Saturday, 26 March 2016 18:37:26"
	// or: "- Your Bookmark at location 346 | Added on Saturday, 26 March 2016 15:46:21"
	metadataPattern = regexp.MustCompile(`^- Your (Highlight|Note|Bookmark)`)

	// Page patterns: "on page 8" or "on page 207-207"
	pagePattern = regexp.MustCompile(`(?i)(?:on )?page (\d+(?:-\d+)?)`)

	// Location patterns: "Location 64-64" or "location 1406-1407" or "at location 784-785"
	locationPattern = regexp.MustCompile(`(?i)(?:at )?location (\d+(?:-\d+)?)`)

	// Date layouts observed in the wild, after stripping the "Added on " prefix
	// "Tuesday, April 15, 2025 10:16:21 PM"
	// "Saturday, 26 March 2016 14:59:39"
	dateLayouts = []string{
		"Monday, 2 January 2006 3:04:05 PM",
		"Monday, 2 January 2006 15:04:05",
		"Monday, January 2, 2006 3:04:05 PM",
		"Monday, January 2, 2006 15:04:05",
	}

	// Title with author: "Book Title (Author Name)"
	// Some books don't have author in parentheses
	titleAuthorPattern = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)\s*$`)
)

// Parse reads a Kindle My Clippings.txt file and returns parsed books with
// their clippings grouped in first-appearance order.
func (p *Parser) Parse(r io.Reader) ([]entities.Book, error) {
	entries, err := p.ParseEntries(r)
	if err != nil {
		return nil, err
	}

	return p.groupEntriesIntoBooks(entries), nil
}

// ParseEntries parses individual clipping entries from the reader
func (p *Parser) ParseEntries(r io.Reader) ([]ClippingEntry, error) {
	scanner := bufio.NewScanner(r)

	var entries []ClippingEntry
	var currentLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if line == entrySeparator {
			if len(currentLines) > 0 {
				entry, err := p.parseEntry(currentLines)
				if err == nil && entry != nil {
					entries = append(entries, *entry)
				}
				currentLines = nil
			}
			continue
		}

		currentLines = append(currentLines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading clippings: %w", err)
	}

	// Handle last entry if file doesn't end with separator
	if len(currentLines) > 0 {
		entry, err := p.parseEntry(currentLines)
		if err == nil && entry != nil {
			entries = append(entries, *entry)
		}
	}

	return entries, nil
}

func (p *Parser) parseEntry(lines []string) (*ClippingEntry, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf("entry too short")
	}

	// First line: Title (Author) or just Title
	titleLine := strings.TrimSpace(lines[0])
	if titleLine == "" {
		return nil, fmt.Errorf("empty title line")
	}

	title, author := parseTitleAuthor(titleLine)

	// Second line: Metadata (type, page, location, date)
	metadataLine := strings.TrimSpace(lines[1])
	if !metadataPattern.MatchString(metadataLine) {
		return nil, fmt.Errorf("invalid metadata line")
	}

	entryType := parseEntryType(metadataLine)
	page := parsePage(metadataLine)
	location := parseLocation(metadataLine)
	date := parseDateString(metadataLine)

	// Remaining lines (after blank line): Text content
	// Format is: title, metadata, blank line, content
	var textLines []string
	startContent := false
	for i := 2; i < len(lines); i++ {
		line := lines[i]
		if !startContent && strings.TrimSpace(line) == "" {
			startContent = true
			continue
		}
		if startContent || strings.TrimSpace(line) != "" {
			startContent = true
			textLines = append(textLines, line)
		}
	}

	text := strings.TrimSpace(strings.Join(textLines, "\n"))

	// Bookmarks are skipped entirely (they have no text content)
	if entryType == EntryTypeBookmark {
		return nil, fmt.Errorf("bookmark entry")
	}

	// Highlights and notes should have text
	if text == "" {
		return nil, fmt.Errorf("empty content")
	}

	return &ClippingEntry{
		Title:    title,
		Author:   author,
		Type:     entryType,
		Page:     page,
		Location: location,
		Date:     date,
		Text:     text,
	}, nil
}

func parseTitleAuthor(line string) (title, author string) {
	matches := titleAuthorPattern.FindStringSubmatch(line)
	if len(matches) == 3 {
		return strings.TrimSpace(matches[1]), strings.TrimSpace(matches[2])
	}
	// No author in parentheses, use whole line as title
	return strings.TrimSpace(line), ""
}

func parseEntryType(line string) EntryType {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "your highlight"):
		return EntryTypeHighlight
	case strings.Contains(lower, "your note"):
		return EntryTypeNote
	case strings.Contains(lower, "your bookmark"):
		return EntryTypeBookmark
	default:
		return EntryTypeHighlight
	}
}

func parsePage(line string) string {
	matches := pagePattern.FindStringSubmatch(line)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

func parseLocation(line string) string {
	matches := locationPattern.FindStringSubmatch(line)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// parseDateString extracts the raw date string after "Added on". The raw
// form is kept because it is rendered verbatim into the highlight metadata.
func parseDateString(line string) string {
	idx := strings.Index(strings.ToLower(line), "added on")
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(line[idx+len("added on"):])
}

// ParseDate parses a source-formatted clipping date, trying the layouts
// observed across Kindle firmware versions. Returns the zero time when no
// layout matches.
func ParseDate(date string) time.Time {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, date)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func (p *Parser) groupEntriesIntoBooks(entries []ClippingEntry) []entities.Book {
	// Group entries by book (title + author combination), preserving the
	// order books first appear in the file.
	bookMap := make(map[string]*entities.Book)
	bookOrder := []string{}

	for _, entry := range entries {
		key := bookKey(entry.Title, entry.Author)

		book, exists := bookMap[key]
		if !exists {
			book = &entities.Book{
				Title:  entry.Title,
				Author: entry.Author,
			}
			bookMap[key] = book
			bookOrder = append(bookOrder, key)
		}

		book.Clippings = append(book.Clippings, entities.Clipping{
			Text:     entry.Text,
			Page:     entry.Page,
			Location: entry.Location,
			Date:     entry.Date,
			IsNote:   entry.Type == EntryTypeNote,
		})
	}

	var books []entities.Book
	for _, key := range bookOrder {
		book := bookMap[key]
		if len(book.Clippings) > 0 {
			books = append(books, *book)
		}
	}

	return books
}

func bookKey(title, author string) string {
	return strings.ToLower(title) + "|" + strings.ToLower(author)
}
