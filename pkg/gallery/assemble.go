package gallery

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// Manifest is the content of a site: its terms and posts.
type Manifest struct {
	Galleries  []Term `yaml:"galleries"`
	Categories []Term `yaml:"categories"`
	Posts      []Post `yaml:"posts"`
}

// LoadManifest reads a YAML content manifest.
func LoadManifest(p string) (*Manifest, error) {
	bs, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(bs, m); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", p, err)
	}

	for i := range m.Posts {
		if m.Posts[i].Status == "" {
			m.Posts[i].Status = StatusPublish
		}
		m.Posts[i].Featured = imageID(m.Posts[i].Featured)
	}

	return m, nil
}

// imageID normalizes a manifest image path to an index ID.
func imageID(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(p), "/")
}

// Site is an assembled collection of posts and images. It is safe for
// concurrent readers once built.
type Site struct {
	Manifest
	Images []*Image

	byID    map[string]*Image
	baseURL string
}

// NewSite assembles a site from a manifest and indexed images.
func NewSite(c *Config, m *Manifest, is []*Image) *Site {
	prefix := c.MediaPrefix
	if prefix == "" {
		prefix = DefaultMediaPrefix
	}

	s := &Site{
		Manifest: *m,
		Images:   is,
		byID:     map[string]*Image{},
		baseURL:  strings.TrimSuffix(c.BaseURL, "/"),
	}

	for _, i := range is {
		if i.URL == "" {
			i.URL = mediaURL(prefix, i.ID)
		}
		s.byID[i.ID] = i
	}

	return s
}

// Collect indexes the photo directory and loads the content manifest.
func Collect(c *Config) (*Site, error) {
	klog.Infof("collect: %s + %s", c.InDir, c.ContentPath)

	m, err := LoadManifest(c.ContentPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	is, err := Find(c.InDir)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	s := NewSite(c, m, is)
	klog.Infof("collected %d posts, %d images, %d galleries, %d categories",
		len(s.Posts), len(s.Images), len(s.Galleries), len(s.Categories))
	return s, nil
}

// Image implements ImageSource.
func (s *Site) Image(id string) (*Image, bool) {
	i, ok := s.byID[imageID(id)]
	return i, ok
}

// PostsInGalleries implements PostSource.
func (s *Site) PostsInGalleries(ids []int, statuses []Status) []Post {
	ps := []Post{}
	for _, p := range s.Posts {
		if !slices.Contains(statuses, p.Status) {
			continue
		}
		for _, id := range ids {
			if slices.Contains(p.Galleries, id) {
				ps = append(ps, p)
				break
			}
		}
	}
	return ps
}

// PostsInCategory implements PostSource.
func (s *Site) PostsInCategory(id int, statuses []Status) []Post {
	ps := []Post{}
	for _, p := range s.Posts {
		if slices.Contains(statuses, p.Status) && slices.Contains(p.Categories, id) {
			ps = append(ps, p)
		}
	}
	return ps
}

// Permalink implements LinkResolver.
func (s *Site) Permalink(p Post) string {
	if p.Slug == "" {
		return s.baseURL + "/?p=" + strconv.Itoa(p.ID)
	}
	return s.baseURL + "/" + urlSafePath(p.Slug) + "/"
}

// Terms returns the terms of a registered taxonomy.
func (s *Site) Terms(taxonomy string) []Term {
	t, ok := LookupTaxonomy(taxonomy)
	if !ok {
		return nil
	}
	switch t.Source {
	case SourceGallery:
		return s.Galleries
	case SourceCategory:
		return s.Categories
	}
	return nil
}

// TermBySlug finds a term of a taxonomy by slug.
func (s *Site) TermBySlug(taxonomy string, slug string) (Term, bool) {
	for _, t := range s.Terms(taxonomy) {
		if t.Slug == slug {
			return t, true
		}
	}
	return Term{}, false
}
