package gallery

import (
	"html/template"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
	"github.com/AlwaysRichard/gkd-gallery/pkg/layout"
)

// Image is a photo known to the image index.
type Image struct {
	// ID is the slash-separated path relative to the photo directory.
	ID     string
	InPath string
	URL    string

	Width  int64
	Height int64

	Exif caption.Record
	// Description is the embedded image description, used when no caption
	// template yields text.
	Description string
}

// Status is a post publication status.
type Status string

// Publication statuses.
const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusPrivate Status = "private"
)

// Term is a gallery or category term.
type Term struct {
	ID   int    `yaml:"id"`
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

// Post is a content item with a single featured image.
type Post struct {
	ID         int    `yaml:"id"`
	Title      string `yaml:"title"`
	Slug       string `yaml:"slug"`
	Status     Status `yaml:"status"`
	Galleries  []int  `yaml:"galleries"`
	Categories []int  `yaml:"categories"`
	// Featured is the featured image path, relative to the photo directory.
	Featured string `yaml:"featured"`
}

// Attachment pairs a featured image with the post it belongs to.
type Attachment struct {
	Image *Image
	Post  Post
}

// Item is one rendered gallery entry.
type Item struct {
	Src       string
	FullURL   string
	Permalink string
	Caption   string
	Width     int64
	Height    int64

	Link string
	Menu bool

	Span  layout.Span
	Style template.CSS
}

// Link modes for an item.
const (
	LinkNone  = "none"
	LinkImage = "image"
	LinkPost  = "post"
	LinkMenu  = "menu"
)
