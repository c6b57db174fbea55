package gallery

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"

	"k8s.io/klog/v2"
)

//go:embed assets/page.tmpl
var pageTmpl string

//go:embed assets/style.css
var styleText string

//go:embed assets/view.js
var viewScript string

// AssetDir is the output subdirectory holding stylesheets and scripts.
const AssetDir = "_"

// NavSection lists the archive pages of one taxonomy.
type NavSection struct {
	Label string
	Links []NavLink
}

// NavLink is a link to an archive page.
type NavLink struct {
	Name string
	URL  string
}

// Page is a standalone HTML page wrapping a gallery block.
type Page struct {
	Title   string
	Gallery template.HTML
	Nav     []NavSection
}

// Render writes the static site: assets, published originals, the index
// page, and one archive page per gallery and category term.
func Render(c *Config, s *Site, a Attributes) error {
	if err := writeAssets(c.OutDir); err != nil {
		return fmt.Errorf("write assets: %w", err)
	}

	if err := publishImages(c, s); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	r := NewRenderer(c, s)
	nav := Navigation(s)

	if err := writeIndex(c, r, a, nav); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if err := writeArchives(c, s, r, a, nav); err != nil {
		return fmt.Errorf("write archives: %w", err)
	}

	return nil
}

func writeAssets(outDir string) error {
	dir := filepath.Join(outDir, AssetDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	for name, content := range map[string]string{"style.css": styleText, "view.js": viewScript} {
		p := filepath.Join(dir, name)
		klog.V(1).Infof("writing asset %s", p)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func publishImages(c *Config, s *Site) error {
	prefix := c.MediaPrefix
	if prefix == "" {
		prefix = DefaultMediaPrefix
	}

	copied := 0
	for _, i := range s.Images {
		updated, err := publish(i, c.OutDir, prefix)
		if err != nil {
			return fmt.Errorf("%s: %w", i.ID, err)
		}
		if updated {
			copied++
		}
	}

	klog.Infof("published %d of %d images", copied, len(s.Images))
	return nil
}

func writeIndex(c *Config, r *Renderer, a Attributes, nav []NavSection) error {
	b, err := r.Render(a, PageContext{})
	if err != nil {
		return err
	}

	bs, err := RenderPage(c, Page{Title: c.Title, Gallery: b.HTML, Nav: nav})
	if err != nil {
		return err
	}

	p := filepath.Join(c.OutDir, "index.html")
	klog.V(1).Infof("Writing index to %s", p)
	return os.WriteFile(p, bs, 0o644)
}

func writeArchives(c *Config, s *Site, r *Renderer, a Attributes, nav []NavSection) error {
	for _, t := range Taxonomies {
		terms := s.Terms(t.Name)
		klog.Infof("Writing out %d %s archives ...", len(terms), t.Route)

		for _, term := range terms {
			b, err := r.Render(a, PageContext{Taxonomy: t.Name, TermID: term.ID})
			if err != nil {
				return fmt.Errorf("render %s: %w", term.Slug, err)
			}

			bs, err := RenderPage(c, Page{Title: term.Name, Gallery: b.HTML, Nav: nav})
			if err != nil {
				return fmt.Errorf("render page %s: %w", term.Slug, err)
			}

			dir := filepath.Join(c.OutDir, t.Route, term.Slug)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("mkdir: %w", err)
			}

			p := filepath.Join(dir, "index.html")
			klog.V(1).Infof("rendering %s %q [%s] with %d images ...", t.Route, term.Name, p, b.Items)
			if err := os.WriteFile(p, bs, 0o644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}
		}
	}

	return nil
}

// ArchiveURL returns the URL of a term's archive page.
func ArchiveURL(t Taxonomy, term Term) string {
	return "/" + path.Join(t.Route, urlSafePath(term.Slug)) + "/"
}

// Navigation links every archive page of s.
func Navigation(s *Site) []NavSection {
	nav := []NavSection{}
	for _, t := range Taxonomies {
		sec := NavSection{Label: t.Label}
		for _, term := range s.Terms(t.Name) {
			sec.Links = append(sec.Links, NavLink{Name: term.Name, URL: ArchiveURL(t, term)})
		}
		if len(sec.Links) > 0 {
			nav = append(nav, sec)
		}
	}
	return nav
}

// RenderPage renders a full HTML page.
func RenderPage(c *Config, p Page) ([]byte, error) {
	data := struct {
		Page
		Collection  string
		Description string
		AssetRoot   string
	}{
		Page:        p,
		Collection:  c.Title,
		Description: c.Description,
		AssetRoot:   "/" + AssetDir,
	}

	return execute(pageTmpl, "page", data)
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"Odd": func(i int) bool {
			return i%2 == 1
		},
		"Join": path.Join,
	}
}
