// Package extract flattens a parsed markdown tree into the ordered item
// list and asset set recorded for each document.
package extract

// ItemType enumerates the inline units a document flattens into.
type ItemType string

const (
	ItemHeading   ItemType = "heading"
	ItemParagraph ItemType = "paragraph"
	ItemTable     ItemType = "table"
	ItemCode      ItemType = "code"
	ItemImage     ItemType = "image"
	ItemLink      ItemType = "link"
	ItemDirective ItemType = "directive"
)

// Item is one inline unit of document content, in document order.
type Item struct {
	Type       ItemType
	Level      int // depth of the nearest enclosing heading, 0 if none
	OrderIndex int // dense, 0-based, strictly increasing per document
	BodyText   string
	Slug       string
	AssetUID   string // back-reference when the item wraps an asset
	Tree       string // JSON sub-tree snapshot for complex inline formatting
}

// Heading tracks one heading of the document, used for item levels and for
// the document's heading list.
type Heading struct {
	Slug  string
	Text  string
	Depth int
	UID   string
	SID   string
}

// PlaceholderText builds the pseudo-link used when an item's rendered text
// stands in for a stored asset.
func PlaceholderText(kind, uid string) string {
	return "asset:///" + kind + "/" + uid
}
