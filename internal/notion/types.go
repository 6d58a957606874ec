package notion

import "strings"

// Property names used on book pages.
const (
	PropTitle           = "Title"
	PropAuthor          = "Author"
	PropHighlights      = "Highlights"
	PropLastHighlighted = "Last Highlighted"
	PropLastSynced      = "Last Synced"
)

// MaxBlocksPerRequest is the Notion API limit on children per append call.
const MaxBlocksPerRequest = 100

// RichText is a single span of Notion rich text. Only plain text spans are
// produced by this tool; PlainText is populated on read.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the nested content object of a text span.
type TextContent struct {
	Content string `json:"content"`
}

// Text builds a plain rich text array from a string.
func Text(content string) []RichText {
	if content == "" {
		return []RichText{}
	}
	return []RichText{{
		Type:      "text",
		Text:      &TextContent{Content: content},
		PlainText: content,
	}}
}

// PlainText flattens a rich text array into its concatenated plain text.
func PlainText(spans []RichText) string {
	var b strings.Builder
	for _, s := range spans {
		if s.PlainText != "" {
			b.WriteString(s.PlainText)
		} else if s.Text != nil {
			b.WriteString(s.Text.Content)
		}
	}
	return b.String()
}

// DateValue is a Notion date property payload.
type DateValue struct {
	Start string `json:"start"`
}

// PropertyValue covers the property shapes this tool reads and writes:
// title, rich_text, number and date.
type PropertyValue struct {
	Type     string     `json:"type,omitempty"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *DateValue `json:"date,omitempty"`
}

// Properties maps property names to values on a page.
type Properties map[string]PropertyValue

func TitleProperty(v string) PropertyValue {
	return PropertyValue{Title: Text(v)}
}

func RichTextProperty(v string) PropertyValue {
	return PropertyValue{RichText: Text(v)}
}

func NumberProperty(v float64) PropertyValue {
	return PropertyValue{Number: &v}
}

func DateProperty(start string) PropertyValue {
	return PropertyValue{Date: &DateValue{Start: start}}
}

// Parent identifies the container of a page. The store may report
// membership either through a database id or a data source id.
type Parent struct {
	Type         string `json:"type,omitempty"`
	DatabaseID   string `json:"database_id,omitempty"`
	DataSourceID string `json:"data_source_id,omitempty"`
	PageID       string `json:"page_id,omitempty"`
}

// ExternalFile is an externally hosted file reference.
type ExternalFile struct {
	URL string `json:"url"`
}

// FileObject is a Notion file value, e.g. a page cover.
type FileObject struct {
	Type     string        `json:"type,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
}

// ExternalCover builds a page cover pointing at an external image URL.
func ExternalCover(url string) *FileObject {
	return &FileObject{Type: "external", External: &ExternalFile{URL: url}}
}

// Page is a Notion page as returned by the pages endpoints.
type Page struct {
	ID         string      `json:"id"`
	Archived   bool        `json:"archived,omitempty"`
	Parent     Parent      `json:"parent,omitempty"`
	Cover      *FileObject `json:"cover,omitempty"`
	Properties Properties  `json:"properties,omitempty"`
}

// TitlePropertyText returns the flattened text of the named title property.
func (p *Page) TitlePropertyText(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	return PlainText(prop.Title)
}

// NumberPropertyValue returns the named number property, or 0 when absent.
func (p *Page) NumberPropertyValue(name string) int {
	prop, ok := p.Properties[name]
	if !ok || prop.Number == nil {
		return 0
	}
	return int(*prop.Number)
}

// DataSource is one sub-partition of a database.
type DataSource struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Database is a Notion database as returned by the databases endpoint.
type Database struct {
	ID          string       `json:"id"`
	DataSources []DataSource `json:"data_sources,omitempty"`
}

// RichTextBlockValue is the body shared by paragraph and quote blocks.
type RichTextBlockValue struct {
	RichText []RichText `json:"rich_text"`
}

// CalloutValue is the body of a callout block.
type CalloutValue struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// Icon is an emoji icon reference.
type Icon struct {
	Type  string `json:"type,omitempty"`
	Emoji string `json:"emoji,omitempty"`
}

// DividerValue is the empty body of a divider block.
type DividerValue struct{}

// Block is a Notion content block limited to the types this tool renders
// and re-parses: paragraph, quote, callout and divider.
type Block struct {
	Object    string              `json:"object,omitempty"`
	Type      string              `json:"type"`
	Paragraph *RichTextBlockValue `json:"paragraph,omitempty"`
	Quote     *RichTextBlockValue `json:"quote,omitempty"`
	Callout   *CalloutValue       `json:"callout,omitempty"`
	Divider   *DividerValue       `json:"divider,omitempty"`
}

// Block type discriminators.
const (
	BlockTypeParagraph = "paragraph"
	BlockTypeQuote     = "quote"
	BlockTypeCallout   = "callout"
	BlockTypeDivider   = "divider"
)

// QuoteBlock builds a quote block with a plain text body.
func QuoteBlock(text string) Block {
	return Block{
		Object: "block",
		Type:   BlockTypeQuote,
		Quote:  &RichTextBlockValue{RichText: Text(text)},
	}
}

// CalloutBlock builds a callout block with a plain text body and an emoji icon.
func CalloutBlock(text, emoji string) Block {
	return Block{
		Object:  "block",
		Type:    BlockTypeCallout,
		Callout: &CalloutValue{RichText: Text(text), Icon: &Icon{Type: "emoji", Emoji: emoji}},
	}
}

// DividerBlock builds a divider block.
func DividerBlock() Block {
	return Block{
		Object:  "block",
		Type:    BlockTypeDivider,
		Divider: &DividerValue{},
	}
}

// PlainTextContent returns the flattened text of the block's body, or
// an empty string for dividers and unsupported types.
func (b Block) PlainTextContent() string {
	switch b.Type {
	case BlockTypeParagraph:
		if b.Paragraph != nil {
			return PlainText(b.Paragraph.RichText)
		}
	case BlockTypeQuote:
		if b.Quote != nil {
			return PlainText(b.Quote.RichText)
		}
	case BlockTypeCallout:
		if b.Callout != nil {
			return PlainText(b.Callout.RichText)
		}
	}
	return ""
}

// CreatePageRequest creates a page in a database.
type CreatePageRequest struct {
	Parent     Parent     `json:"parent"`
	Properties Properties `json:"properties"`
}

// UpdatePageRequest patches page properties, archived state or cover.
type UpdatePageRequest struct {
	Properties Properties  `json:"properties,omitempty"`
	Archived   *bool       `json:"archived,omitempty"`
	Cover      *FileObject `json:"cover,omitempty"`
}

// SearchFilter restricts search results to one object type.
type SearchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// SearchRequest is the body of the search endpoint.
type SearchRequest struct {
	Query       string        `json:"query,omitempty"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

// SearchResult is one entry of a search response. Only the identifier is
// consumed; candidates are always re-fetched before use.
type SearchResult struct {
	Object string `json:"object"`
	ID     string `json:"id"`
}

// SearchResponse is a page of search results.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// BlockChildrenResponse is a page of a block children listing.
type BlockChildrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// AppendChildrenRequest appends content blocks to a page.
type AppendChildrenRequest struct {
	Children []Block `json:"children"`
}
