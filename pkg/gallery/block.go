package gallery

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
	"github.com/AlwaysRichard/gkd-gallery/pkg/layout"
)

//go:embed assets/gallery.tmpl
var galleryTmpl string

// NoImages is shown when a block selects no images.
const NoImages = "No images found."

var stripTags = bluemonday.StrictPolicy()

// Block is a rendered gallery block.
type Block struct {
	HTML template.HTML
	// Items is the number of images shown.
	Items int
	// Notice is set when a message was rendered instead of a gallery.
	Notice string
}

// Renderer renders gallery blocks.
type Renderer struct {
	Posts  PostSource
	Images ImageSource
	Links  LinkResolver

	// ReferenceWidth is the container width tiled layouts are precomputed for.
	ReferenceWidth int
	// LayoutEndpoint is advertised to the browser for re-layout on resize.
	LayoutEndpoint string
}

// NewRenderer returns a renderer backed by a site.
func NewRenderer(c *Config, s *Site) *Renderer {
	w := c.ReferenceWidth
	if w <= 0 {
		w = DefaultReferenceWidth
	}
	return &Renderer{
		Posts:          s,
		Images:         s,
		Links:          s,
		ReferenceWidth: w,
		LayoutEndpoint: c.LayoutEndpoint,
	}
}

// Render renders a block as it appears on page.
func (r *Renderer) Render(a Attributes, page PageContext) (*Block, error) {
	a.Normalize()

	f := ResolveContext(a, page)
	klog.V(1).Infof("render %s block for %+v on %+v", a.Layout, f, page)

	if err := Validate(f); err != nil {
		klog.V(1).Infof("validation: %v", err)
		return r.notice(Notice(err))
	}

	as := attachments(r.Posts, r.Images, f, a.IncludeUnpublished)
	if len(as) == 0 {
		return r.notice(NoImages)
	}
	as = shape(as, a.MaxImages)

	data := r.blockData(a, as)
	bs, err := execute(galleryTmpl, "gallery", data)
	if err != nil {
		return nil, fmt.Errorf("render gallery: %w", err)
	}

	klog.V(1).Infof("rendered %d items (%d bytes)", len(data.Items), len(bs))
	return &Block{HTML: template.HTML(bs), Items: len(data.Items)}, nil
}

func (r *Renderer) notice(msg string) (*Block, error) {
	bs, err := execute(galleryTmpl, "notice", msg)
	if err != nil {
		return nil, fmt.Errorf("render notice: %w", err)
	}
	return &Block{HTML: template.HTML(bs), Notice: msg}, nil
}

type blockData struct {
	Classes        string
	Style          template.CSS
	Tiled          bool
	TargetHeight   int
	Gutter         int
	LayoutEndpoint string
	Items          []Item
}

func (r *Renderer) blockData(a Attributes, as []Attachment) blockData {
	classes := []string{"cat-gallery", "cat-gallery--" + a.Layout}
	if !a.Crop && a.Layout == LayoutCollage {
		classes = append(classes, "cat--nocrop")
	}

	var style []string
	switch a.Layout {
	case LayoutGrid:
		style = append(style, fmt.Sprintf("--cat-grid-cols: repeat(%d, 1fr)", a.Columns), fmt.Sprintf("--cat-gap: %dpx", a.Gutter))
	case LayoutMasonry:
		style = append(style, fmt.Sprintf("--cat-columns: %d", a.Columns), fmt.Sprintf("--cat-gap: %dpx", a.Gutter))
	case LayoutTiled:
		style = append(style, fmt.Sprintf("--cat-gap: %dpx", a.Gutter))
	case LayoutCollage:
		style = append(style, fmt.Sprintf("--cat-cols: %d", a.Columns), fmt.Sprintf("--cat-gap: %dpx", a.Gutter), "--cat-row: 12px")
	}

	d := blockData{
		Classes:      strings.Join(classes, " "),
		Style:        template.CSS(strings.Join(style, "; ")),
		Tiled:        a.Layout == LayoutTiled,
		TargetHeight: a.TargetHeight,
		Gutter:       a.Gutter,
		Items:        make([]Item, 0, len(as)),
	}
	if d.Tiled {
		d.LayoutEndpoint = r.LayoutEndpoint
	}

	natural := make([]layout.Item, 0, len(as))
	for _, at := range as {
		d.Items = append(d.Items, r.item(a, at))
		natural = append(natural, layout.Item{Width: float64(at.Image.Width), Height: float64(at.Image.Height)})
	}

	switch a.Layout {
	case LayoutTiled:
		tiledStyles(d.Items, natural, float64(r.ReferenceWidth), float64(a.TargetHeight), float64(a.Gutter))
	case LayoutCollage:
		for i := range d.Items {
			d.Items[i].Span = layout.GridSpan(natural[i].Aspect())
			d.Items[i].Style = template.CSS(fmt.Sprintf("grid-column: span %d; grid-row: span %d", d.Items[i].Span.Columns, d.Items[i].Span.Rows))
		}
	}

	return d
}

func (r *Renderer) item(a Attributes, at Attachment) Item {
	i := at.Image
	w, h := displaySize(a.Size, i.Width, i.Height)

	it := Item{
		Src:       i.URL,
		FullURL:   i.URL,
		Permalink: r.Links.Permalink(at.Post),
		Width:     w,
		Height:    h,
	}

	if a.ExifTemplate != "" {
		it.Caption = caption.Render(a.ExifTemplate, i.Exif)
	}
	if it.Caption == "" {
		it.Caption = plainText(i.Description)
	}

	switch {
	case a.LinkToImage && !a.LinkToPost:
		it.Link = LinkImage
	case !a.LinkToImage && a.LinkToPost && it.Permalink != "":
		it.Link = LinkPost
	case a.LinkToImage && a.LinkToPost:
		it.Link = LinkMenu
	default:
		it.Link = LinkNone
	}
	it.Menu = it.Link == LinkMenu && it.Permalink != ""

	return it
}

// tiledStyles sizes each item as a share of its row's gutter-free width, so
// rows stay exactly full at any container width.
func tiledStyles(items []Item, natural []layout.Item, width, target, gutter float64) {
	for i := range items {
		if natural[i].Aspect() == 0 {
			items[i].Style = "width: 100%"
		}
	}

	for _, row := range layout.Rows(width, target, gutter, natural) {
		total := 0.0
		for _, w := range row.Widths {
			total += w
		}
		gaps := gutter * float64(len(row.Items)-1)

		for k, idx := range row.Items {
			share := math.Floor(row.Widths[k]/total*1e6) / 1e6
			items[idx].Style = template.CSS(fmt.Sprintf("width: calc((100%% - %spx) * %s); aspect-ratio: %s / %s",
				formatFloat(gaps), formatFloat(share), formatFloat(natural[idx].Width), formatFloat(natural[idx].Height)))
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// plainText strips markup from embedded descriptions.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

func execute(ts string, name string, data any) ([]byte, error) {
	tmpl, err := template.New("root").Funcs(tmplFunctions()).Parse(ts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var tpl bytes.Buffer
	if err := tmpl.ExecuteTemplate(&tpl, name, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}
