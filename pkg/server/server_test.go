package server

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
	"github.com/AlwaysRichard/gkd-gallery/pkg/gallery"
	"github.com/AlwaysRichard/gkd-gallery/pkg/layout"
)

func testSite(c *gallery.Config, name string) *gallery.Site {
	m := &gallery.Manifest{
		Galleries:  []gallery.Term{{ID: 1, Slug: "landscapes", Name: name}},
		Categories: []gallery.Term{{ID: 10, Slug: "travel", Name: "Travel"}},
		Posts: []gallery.Post{
			{ID: 100, Title: "Fjord", Slug: "fjord", Status: gallery.StatusPublish, Galleries: []int{1}, Featured: "norway/fjord.jpg"},
		},
	}
	is := []*gallery.Image{{
		ID: "norway/fjord.jpg", Width: 6000, Height: 4000,
		Exif: caption.Record{CameraMake: "Nikon", ISO: "400", Path: "/photos/norway/fjord.jpg"},
	}}
	return gallery.NewSite(c, m, is)
}

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	out := t.TempDir()
	media := filepath.Join(out, "media", "norway")
	if err := os.MkdirAll(media, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(media, "fjord.jpg"), []byte("jpeg bytes"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := &gallery.Config{OutDir: out, Title: "Field Notes", LayoutEndpoint: "/api/layout"}
	s := New(c, testSite(c, "Landscapes"), gallery.DefaultAttributes())

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, string(bs)
}

func TestPages(t *testing.T) {
	_, ts := testServer(t)

	tests := []struct {
		path       string
		wantStatus int
		want       string
	}{
		{"/", http.StatusOK, "No galleries selected."},
		{"/gallery/landscapes/", http.StatusOK, `src="/media/norway/fjord.jpg"`},
		{"/gallery/landscapes", http.StatusOK, `data-layout-endpoint="/api/layout"`},
		{"/category/travel/", http.StatusOK, gallery.NoImages},
		{"/gallery/nope/", http.StatusNotFound, ""},
		{"/tag/landscapes/", http.StatusNotFound, ""},
		{"/media/norway/fjord.jpg", http.StatusOK, "jpeg bytes"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			status, body := get(t, ts.URL+tc.path)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d", status, tc.wantStatus)
			}
			if !strings.Contains(body, tc.want) {
				t.Errorf("body missing %q:\n%s", tc.want, body)
			}
		})
	}
}

func TestLayoutHandler(t *testing.T) {
	_, ts := testServer(t)

	body := `{"containerWidth": 500, "targetRowHeight": 100, "gutter": 0, "items": [{"width": 500, "height": 250}, {"width": 0, "height": 0}]}`
	resp, err := http.Post(ts.URL+"/api/layout", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := LayoutResponse{Boxes: []layout.Box{
		{Width: 500, Height: 250},
		{Skipped: true},
	}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutHandlerErrors(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/layout", "application/json", strings.NewReader("{oops"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad JSON status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/layout", "application/json", strings.NewReader(`{"items": []}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Boxes == nil || len(got.Boxes) != 0 {
		t.Errorf("empty layout boxes = %#v, want []", got.Boxes)
	}

	if status, _ := get(t, ts.URL+"/api/layout"); status != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/layout status = %d, want 405", status)
	}
}

func TestLayoutHandlerExtremeAspect(t *testing.T) {
	_, ts := testServer(t)

	body := `{"containerWidth":1000,"targetRowHeight":250,"gutter":8,"items":[{"width":1e308,"height":1e-10},{"width":3,"height":2}]}`
	resp, err := http.Post(ts.URL+"/api/layout", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []layout.Box{
		{Skipped: true},
		{Width: 1000, Height: 1000 / 1.5, Row: 0},
	}
	if diff := cmp.Diff(want, got.Boxes, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, map[string]float64{"width": math.NaN()})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want a non-JSON error", ct)
	}
}

func TestCaptionHandler(t *testing.T) {
	_, ts := testServer(t)

	q := url.Values{}
	q.Set("image", "norway/fjord.jpg")
	q.Set("template", "{CameraMake}{' | ', ISOSpeedRatings}")

	status, body := get(t, ts.URL+"/api/caption?"+q.Encode())
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var got CaptionResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := CaptionResponse{Image: "norway/fjord.jpg", Caption: "Nikon | ISO-400"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("caption mismatch (-want +got):\n%s", diff)
	}

	if status, _ := get(t, ts.URL+"/api/caption?image=gone.jpg&template=x"); status != http.StatusNotFound {
		t.Errorf("unknown image status = %d, want 404", status)
	}
}

func TestSetSite(t *testing.T) {
	s, ts := testServer(t)

	s.SetSite(testSite(s.c, "Mountains"))

	_, body := get(t, ts.URL+"/gallery/landscapes/")
	if !strings.Contains(body, "<h1>Mountains</h1>") {
		t.Errorf("page still shows the old site:\n%s", body)
	}
}

func TestMetrics(t *testing.T) {
	_, ts := testServer(t)

	get(t, ts.URL+"/")
	get(t, ts.URL+"/gallery/landscapes/")
	resp, err := http.Post(ts.URL+"/api/layout", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, want := range []string{
		`gkd_gallery_renders_total{layout="tiled",outcome="notice"} 1`,
		`gkd_gallery_renders_total{layout="tiled",outcome="ok"} 1`,
		`gkd_gallery_layout_requests_total 1`,
		`gkd_gallery_render_seconds_count 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
