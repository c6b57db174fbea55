package gallery

import (
	"errors"
)

// PageContext describes the page a block is rendered on. The zero value is
// an ordinary page; archive pages carry their taxonomy and term.
type PageContext struct {
	Taxonomy string
	TermID   int
}

// Filter selects the posts a block shows.
type Filter struct {
	SourceType string
	Galleries  []int
	Categories []int
}

var (
	// ErrNoGalleries is returned for a gallery block with no gallery terms.
	ErrNoGalleries = errors.New("no galleries selected")
	// ErrNoCategory is returned for a category block with no category.
	ErrNoCategory = errors.New("no category selected")
)

var notices = map[error]string{
	ErrNoGalleries: "No galleries selected.",
	ErrNoCategory:  "No category selected.",
}

// Notice returns the message shown in place of a gallery for err.
func Notice(err error) string {
	for e, msg := range notices {
		if errors.Is(err, e) {
			return msg
		}
	}
	return err.Error()
}

// ResolveContext returns the filter for a block. On a gallery or category
// archive page the archive's term overrides the block's own selection.
func ResolveContext(a Attributes, page PageContext) Filter {
	f := Filter{
		SourceType: a.SourceType,
		Galleries:  a.Galleries,
		Categories: a.Categories,
	}

	if page.TermID <= 0 {
		return f
	}

	switch page.Taxonomy {
	case GalleryTaxonomy:
		f.SourceType = SourceGallery
		f.Galleries = []int{page.TermID}
	case CategoryTaxonomy:
		f.SourceType = SourceCategory
		f.Categories = []int{page.TermID}
	}

	return f
}

// Validate reports whether f selects anything.
func Validate(f Filter) error {
	if f.SourceType == SourceGallery && len(f.Galleries) == 0 {
		return ErrNoGalleries
	}
	if f.SourceType == SourceCategory && len(f.Categories) == 0 {
		return ErrNoCategory
	}
	return nil
}
