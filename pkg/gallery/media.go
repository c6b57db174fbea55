package gallery

import (
	"fmt"
	"image"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// Image sizes a block may display.
const (
	SizeThumbnail   = "thumbnail"
	SizeMedium      = "medium"
	SizeMediumLarge = "medium_large"
	SizeLarge       = "large"
	SizeFull        = "full"
)

// sizeOpts is the bounding box of a display size. A zero dimension is
// unbounded; Crop fills the box exactly.
type sizeOpts struct {
	X    int64
	Y    int64
	Crop bool
}

var sizes = map[string]sizeOpts{
	SizeThumbnail:   {X: 150, Y: 150, Crop: true},
	SizeMedium:      {X: 300, Y: 300},
	SizeMediumLarge: {X: 768},
	SizeLarge:       {X: 1024, Y: 1024},
	SizeFull:        {},
}

// displaySize returns the dimensions of image i at the named size. Images are
// never scaled up.
func displaySize(name string, w, h int64) (int64, int64) {
	s, ok := sizes[name]
	if !ok || w <= 0 || h <= 0 {
		return w, h
	}

	if s.Crop {
		return min(w, s.X), min(h, s.Y)
	}

	scale := 1.0
	if s.X > 0 && w > s.X {
		scale = float64(s.X) / float64(w)
	}
	if s.Y > 0 && h > s.Y {
		scale = min(scale, float64(s.Y)/float64(h))
	}
	if scale >= 1 {
		return w, h
	}

	return max(1, int64(float64(w)*scale+0.5)), max(1, int64(float64(h)*scale+0.5))
}

// publish copies an original into the output directory unless an identical
// copy is already there. It reports whether a copy was made.
func publish(i *Image, outDir string, prefix string) (bool, error) {
	fullDest := filepath.Join(outDir, prefix, filepath.FromSlash(i.ID))

	sst, err := os.Stat(i.InPath)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}

	dst, err := os.Stat(fullDest)
	updated := false

	if err != nil {
		updated = true
		klog.V(1).Infof("updating %s: does not exist", fullDest)
	}

	if err == nil && sst.Size() != dst.Size() {
		updated = true
		klog.Infof("updating %s: size mismatch", fullDest)
	}

	if err == nil && sst.ModTime().After(dst.ModTime()) {
		klog.Infof("updating %s: source newer", fullDest)
		updated = true
	}

	if !updated {
		return false, nil
	}

	if err := copy.Copy(i.InPath, fullDest, copy.Options{PreserveTimes: true}); err != nil {
		return false, fmt.Errorf("copy: %w", err)
	}
	return true, nil
}

// decodeDimensions reads the pixel dimensions from an image header.
func decodeDimensions(p string) (int64, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return 0, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	ic, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to decode: %w", err)
	}

	return int64(ic.Width), int64(ic.Height), nil
}

// mediaURL returns the URL a published original is served from.
func mediaURL(prefix string, id string) string {
	return "/" + path.Join(strings.Trim(prefix, "/"), urlSafePath(id))
}

// urlSafePath escapes each element of a slash-separated path.
func urlSafePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
