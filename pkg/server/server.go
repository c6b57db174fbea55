// Package server serves gallery pages and the layout and caption APIs.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
	"github.com/AlwaysRichard/gkd-gallery/pkg/gallery"
	"github.com/AlwaysRichard/gkd-gallery/pkg/layout"
)

// Server renders gallery pages on request.
type Server struct {
	c *gallery.Config
	a gallery.Attributes

	mu   sync.RWMutex
	site *gallery.Site

	registry       *prometheus.Registry
	renders        *prometheus.CounterVec
	renderSeconds  prometheus.Histogram
	layoutRequests prometheus.Counter
}

// New creates a new server for a site.
func New(c *gallery.Config, s *gallery.Site, a gallery.Attributes) *Server {
	a.Normalize()
	server := &Server{
		c:        c,
		a:        a,
		site:     s,
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gkd_gallery_renders_total",
			Help: "Gallery blocks rendered, by layout and outcome.",
		}, []string{"layout", "outcome"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gkd_gallery_render_seconds",
			Help:    "Time spent rendering gallery pages.",
			Buckets: prometheus.DefBuckets,
		}),
		layoutRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gkd_gallery_layout_requests_total",
			Help: "Justified layout API requests.",
		}),
	}

	server.registry.MustRegister(server.renders, server.renderSeconds, server.layoutRequests)
	return server
}

// SetSite replaces the site being served.
func (s *Server) SetSite(site *gallery.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.site = site
}

func (s *Server) current() *gallery.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter().StrictSlash(true)

	r.HandleFunc("/", s.IndexHandler()).Methods(http.MethodGet)
	r.HandleFunc("/api/layout", s.LayoutHandler()).Methods(http.MethodPost)
	r.HandleFunc("/api/caption", s.CaptionHandler()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	prefix := s.c.MediaPrefix
	if prefix == "" {
		prefix = gallery.DefaultMediaPrefix
	}
	prefix = strings.Trim(prefix, "/")
	for _, dir := range []string{prefix, gallery.AssetDir} {
		r.PathPrefix("/" + dir + "/").Handler(
			http.StripPrefix("/"+dir+"/", http.FileServer(http.Dir(filepath.Join(s.c.OutDir, filepath.FromSlash(dir))))))
	}

	routes := []string{}
	for _, t := range gallery.Taxonomies {
		routes = append(routes, t.Route)
	}
	r.HandleFunc("/{route:"+strings.Join(routes, "|")+"}/{slug}/", s.ArchiveHandler()).Methods(http.MethodGet)

	return r
}

// IndexHandler renders the configured block on the front page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.page(w, s.c.Title, gallery.PageContext{})
	}
}

// ArchiveHandler renders the archive page of a gallery or category term.
func (s *Server) ArchiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		t, ok := gallery.TaxonomyForRoute(vars["route"])
		if !ok {
			http.NotFound(w, r)
			return
		}

		term, ok := s.current().TermBySlug(t.Name, vars["slug"])
		if !ok {
			http.NotFound(w, r)
			return
		}

		s.page(w, term.Name, gallery.PageContext{Taxonomy: t.Name, TermID: term.ID})
	}
}

func (s *Server) page(w http.ResponseWriter, title string, pc gallery.PageContext) {
	start := time.Now()
	defer func() { s.renderSeconds.Observe(time.Since(start).Seconds()) }()

	site := s.current()
	b, err := gallery.NewRenderer(s.c, site).Render(s.a, pc)
	if err != nil {
		klog.Errorf("render %+v: %v", pc, err)
		s.renders.WithLabelValues(s.a.Layout, "error").Inc()
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	outcome := "ok"
	if b.Notice != "" {
		outcome = "notice"
	}
	s.renders.WithLabelValues(s.a.Layout, outcome).Inc()

	bs, err := gallery.RenderPage(s.c, gallery.Page{Title: title, Gallery: b.HTML, Nav: gallery.Navigation(site)})
	if err != nil {
		klog.Errorf("render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(bs); err != nil {
		klog.Warningf("write: %v", err)
	}
}

// LayoutRequest asks for a justified layout.
type LayoutRequest struct {
	ContainerWidth  float64       `json:"containerWidth"`
	TargetRowHeight float64       `json:"targetRowHeight"`
	Gutter          float64       `json:"gutter"`
	Items           []layout.Item `json:"items"`
}

// LayoutResponse holds one box per requested item.
type LayoutResponse struct {
	Boxes []layout.Box `json:"boxes"`
}

// LayoutHandler computes justified rows for the browser.
func (s *Server) LayoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.layoutRequests.Inc()

		var req LayoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		boxes := layout.Justify(req.ContainerWidth, req.TargetRowHeight, req.Gutter, req.Items)
		if boxes == nil {
			boxes = []layout.Box{}
		}
		klog.V(1).Infof("layout: %d items at %.0fpx", len(boxes), req.ContainerWidth)

		writeJSON(w, LayoutResponse{Boxes: boxes})
	}
}

// CaptionResponse is a rendered caption.
type CaptionResponse struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

// CaptionHandler renders a caption template against an indexed image.
func (s *Server) CaptionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("image")

		i, ok := s.current().Image(id)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown image %q", id), http.StatusNotFound)
			return
		}

		writeJSON(w, CaptionResponse{Image: i.ID, Caption: caption.Render(q.Get("template"), i.Exif)})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	bs, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("encode: %v", err)
		http.Error(w, "unable to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(append(bs, '\n')); err != nil {
		klog.Warningf("write: %v", err)
	}
}
