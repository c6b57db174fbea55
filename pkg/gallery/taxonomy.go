package gallery

// Taxonomy names.
const (
	GalleryTaxonomy  = "gkd_gallery"
	CategoryTaxonomy = "category"
)

// Taxonomy describes a way of classifying posts.
type Taxonomy struct {
	Name  string
	Label string
	// Route is the first URL path segment of the taxonomy's archive pages.
	Route string
	// Source is the block source type that selects posts by this taxonomy.
	Source string
}

// Taxonomies is the registry of taxonomies galleries can be built from.
var Taxonomies = []Taxonomy{
	{Name: GalleryTaxonomy, Label: "Galleries", Route: "gallery", Source: SourceGallery},
	{Name: CategoryTaxonomy, Label: "Categories", Route: "category", Source: SourceCategory},
}

// LookupTaxonomy finds a registered taxonomy by name.
func LookupTaxonomy(name string) (Taxonomy, bool) {
	for _, t := range Taxonomies {
		if t.Name == name {
			return t, true
		}
	}
	return Taxonomy{}, false
}

// TaxonomyForRoute finds a registered taxonomy by its archive route.
func TaxonomyForRoute(route string) (Taxonomy, bool) {
	for _, t := range Taxonomies {
		if t.Route == route {
			return t, true
		}
	}
	return Taxonomy{}, false
}
