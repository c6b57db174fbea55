package gallery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// metadataReader is the part of exiftool used to index images.
type metadataReader interface {
	ExtractMetadata(files ...string) []exiftool.FileMetadata
}

// first returns the first present key of fi as a string.
func first(fi exiftool.FileMetadata, keys ...string) (string, error) {
	var err error
	for _, k := range keys {
		var s string
		s, err = fi.GetString(k)
		if err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	if err == nil {
		err = exiftool.ErrKeyNotFound
	}
	return "", err
}

// FromMetadata builds an image from exiftool output. Missing tags are left
// empty; only an extraction failure is an error.
func FromMetadata(fi exiftool.FileMetadata) (*Image, error) {
	i := &Image{InPath: fi.File}
	if fi.Err != nil {
		return i, fmt.Errorf("extract fail for %q: %w", fi.File, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v\n", k, v)
	}

	r := caption.Record{Path: fi.File}
	var err error

	fields := []struct {
		dst  *string
		keys []string
	}{
		{&r.Copyright, []string{"Copyright", "Artist"}},
		{&r.CameraMake, []string{"Make"}},
		{&r.CameraModel, []string{"Model"}},
		{&r.ISO, []string{"ISO", "ISOSpeedRatings"}},
		{&r.FocalLength, []string{"FocalLength"}},
		{&r.ExposureTime, []string{"ExposureTime", "ShutterSpeed"}},
		{&r.FNumber, []string{"FNumber", "Aperture"}},
		{&r.DateTimeOriginal, []string{"DateTimeOriginal"}},
	}
	for _, f := range fields {
		*f.dst, err = first(fi, f.keys...)
		if err != nil {
			klog.V(1).Infof("unable to get %s for %s: %v", f.keys[0], fi.File, err)
		}
	}
	i.Exif = r

	i.Description, err = first(fi, "ImageDescription", "Caption-Abstract", "Description")
	if err != nil {
		klog.V(2).Infof("unable to get description for %s: %v", fi.File, err)
	}

	i.Width, err = fi.GetInt("ImageWidth")
	if err != nil {
		klog.V(1).Infof("unable to get width for %s: %v", fi.File, err)
	}

	i.Height, err = fi.GetInt("ImageHeight")
	if err != nil {
		klog.V(1).Infof("unable to get height for %s: %v", fi.File, err)
	}

	return i, nil
}

func read(path string, et metadataReader) (*Image, error) {
	fis := et.ExtractMetadata(path)
	if len(fis) == 0 {
		return nil, fmt.Errorf("no metadata for %q", path)
	}

	i, err := FromMetadata(fis[0])
	if err != nil {
		return nil, err
	}
	i.InPath = path
	i.Exif.Path = path

	if i.Width <= 0 || i.Height <= 0 {
		w, h, err := decodeDimensions(path)
		if err != nil {
			klog.Warningf("unable to read dimensions of %s: %v", path, err)
		} else {
			i.Width, i.Height = w, h
		}
	}

	return i, nil
}

// Find indexes every image below root using exiftool.
func Find(root string) ([]*Image, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	defer func() {
		if err := et.Close(); err != nil {
			klog.Errorf("failed to close exiftool: %v", err)
		}
	}()

	return find(root, et)
}

func find(root string, et metadataReader) ([]*Image, error) {
	found := []*Image{}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path != root && filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}

			if de.IsDir() || !imageExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			klog.V(1).Infof("found %s", path)
			i, err := read(path, et)
			if err != nil {
				klog.Errorf("read failure: %v", err)
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			i.ID = filepath.ToSlash(rel)

			found = append(found, i)
			return nil
		},
	})
	if err != nil {
		return found, err
	}

	klog.Infof("indexed %d images in %s", len(found), root)
	return found, nil
}
