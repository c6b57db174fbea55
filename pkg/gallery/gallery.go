// Package gallery renders photo gallery blocks from posts tagged with a
// gallery term or a category.
package gallery

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Config holds site-wide configuration.
type Config struct {
	// InDir is the photo directory.
	InDir string
	// ContentPath is the YAML content manifest.
	ContentPath string
	OutDir      string
	// BaseURL prefixes post permalinks.
	BaseURL     string
	Title       string
	Description string
	// MediaPrefix is the URL path published originals are served from.
	MediaPrefix string
	// ReferenceWidth is the container width static tiled layouts are computed for.
	ReferenceWidth int
	// LayoutEndpoint, when set, lets the browser re-run tiled layouts on resize.
	LayoutEndpoint string
}

// DefaultMediaPrefix is where originals are published.
const DefaultMediaPrefix = "media"

// DefaultReferenceWidth is the container width assumed for static layouts.
const DefaultReferenceWidth = 1200

// Source types.
const (
	SourceGallery  = "gallery"
	SourceCategory = "category"
)

// Layouts.
const (
	LayoutTiled   = "tiled"
	LayoutGrid    = "grid"
	LayoutMasonry = "masonry"
	LayoutCollage = "collage"
)

// Attributes configure a single gallery block.
type Attributes struct {
	SourceType         string `yaml:"sourceType"`
	Galleries          []int  `yaml:"galleries"`
	Categories         []int  `yaml:"categories"`
	IncludeUnpublished bool   `yaml:"includeUnpublished"`
	Layout             string `yaml:"layout"`
	Columns            int    `yaml:"columns"`
	Gutter             int    `yaml:"gutter"`
	TargetHeight       int    `yaml:"targetHeight"`
	MaxImages          int    `yaml:"maxImages"`
	LinkToImage        bool   `yaml:"linkToImage"`
	LinkToPost         bool   `yaml:"linkToPost"`
	Crop               bool   `yaml:"crop"`
	Size               string `yaml:"size"`
	ExifTemplate       string `yaml:"exifTemplate"`
}

// DefaultAttributes returns the attributes of a freshly inserted block.
func DefaultAttributes() Attributes {
	return Attributes{
		SourceType:   SourceGallery,
		Layout:       LayoutTiled,
		Columns:      3,
		Gutter:       8,
		TargetHeight: 250,
		LinkToImage:  true,
		Crop:         true,
		Size:         SizeLarge,
	}
}

// LoadAttributes reads block attributes from a YAML file. Keys missing from
// the file keep their defaults.
func LoadAttributes(path string) (Attributes, error) {
	a := DefaultAttributes()
	if path == "" {
		return a, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read: %w", err)
	}

	if err := yaml.Unmarshal(bs, &a); err != nil {
		return a, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	a.Normalize()
	return a, nil
}

// Normalize makes numeric attributes non-negative and replaces unknown
// enumerated values with their defaults.
func (a *Attributes) Normalize() {
	d := DefaultAttributes()

	a.Columns = abs(a.Columns)
	a.Gutter = abs(a.Gutter)
	a.TargetHeight = abs(a.TargetHeight)
	a.MaxImages = abs(a.MaxImages)

	if a.Columns == 0 {
		a.Columns = d.Columns
	}
	if a.TargetHeight == 0 {
		a.TargetHeight = d.TargetHeight
	}

	switch a.SourceType {
	case SourceGallery, SourceCategory:
	default:
		klog.Warningf("unknown source type %q, using %q", a.SourceType, d.SourceType)
		a.SourceType = d.SourceType
	}

	switch a.Layout {
	case LayoutTiled, LayoutGrid, LayoutMasonry, LayoutCollage:
	default:
		klog.Warningf("unknown layout %q, using %q", a.Layout, d.Layout)
		a.Layout = d.Layout
	}

	if _, ok := sizes[a.Size]; !ok {
		klog.Warningf("unknown image size %q, using %q", a.Size, d.Size)
		a.Size = d.Size
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
