package entities

// Clipping is a single highlight or note extracted from a Kindle
// "My Clippings.txt" export. Page and Location keep the raw range strings
// from the device ("12", "120-121") and Date keeps the source-formatted
// timestamp, since both are rendered verbatim into Notion.
type Clipping struct {
	Text     string
	Page     string
	Location string
	Date     string
	IsNote   bool
}

// Book groups the clippings of one title for a single run. Clippings keep
// their source order.
type Book struct {
	Title     string
	Author    string
	Clippings []Clipping
}

// TitleAndAuthor returns the display form used in progress output.
func (b Book) TitleAndAuthor() string {
	if b.Author == "" {
		return b.Title
	}
	return b.Title + " (" + b.Author + ")"
}
