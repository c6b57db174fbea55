// gkd-gallery builds a static photo gallery site and optionally serves it.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/gallery"
	"github.com/AlwaysRichard/gkd-gallery/pkg/server"
)

var (
	inDir       = flag.String("in", "", "Location of photo directory")
	contentPath = flag.String("content", "", "Location of the YAML content manifest")
	blockPath   = flag.String("block", "", "Location of the YAML block attributes (optional)")
	outDir      = flag.String("out", "", "Location of output directory")
	baseURL     = flag.String("base-url", "", "URL prefix for post permalinks")
	title       = flag.String("title", "gkd-gallery", "Title of photo collection")
	description = flag.String("description", "", "description of photo collection")
	listen      = flag.Bool("listen", false, "serve content via HTTP")
	addr        = flag.String("addr", "localhost:12800", "host:port to bind to in listen mode")
	watchFlag   = flag.Bool("watch", false, "watch for changes to --in and --content and rebuild")
)

// quietPeriod is how long the watcher waits for changes to settle.
const quietPeriod = 250 * time.Millisecond

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	for name, v := range map[string]string{"in": *inDir, "content": *contentPath, "out": *outDir} {
		if v == "" {
			klog.Exitf("--%s is a required flag", name)
		}
	}

	a, err := gallery.LoadAttributes(*blockPath)
	if err != nil {
		klog.Exitf("block attributes: %v", err)
	}

	c := &gallery.Config{
		InDir:       *inDir,
		ContentPath: *contentPath,
		OutDir:      *outDir,
		BaseURL:     *baseURL,
		Title:       *title,
		Description: *description,
	}
	if *listen {
		c.LayoutEndpoint = "/api/layout"
	}

	s, err := build(c, a)
	if err != nil {
		klog.Exitf("build failed: %v", err)
	}

	var srv *server.Server
	if *listen {
		srv = server.New(c, s, a)
	}

	var wg sync.WaitGroup
	if *watchFlag {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch(c, a, s, srv); err != nil {
				klog.Exitf("watch failed: %v", err)
			}
		}()
	}

	if *listen {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(srv, *addr)
		}()
	}

	wg.Wait()
}

func build(c *gallery.Config, a gallery.Attributes) (*gallery.Site, error) {
	s, err := gallery.Collect(c)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	if err := gallery.Render(c, s, a); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return s, nil
}

// serve serves rendered pages and the gallery APIs via HTTP
func serve(srv *server.Server, addr string) {
	klog.Infof("Listening on %s...", addr)
	err := http.ListenAndServe(addr, srv.Router())
	if err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}

// watch watches the photo directories and the manifest for changes and
// rebuilds once they settle.
func watch(c *gallery.Config, a gallery.Attributes, s *gallery.Site, srv *server.Server) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()

		ns, err := build(c, a)
		if err != nil {
			klog.Errorf("rebuild failed: %v", err)
			return
		}
		if srv != nil {
			srv.SetSite(ns)
		}
		klog.Infof("rebuilt %d images", len(ns.Images))
	}

	var timer *time.Timer
	for _, d := range watchDirs(c, s) {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	klog.Infof("watching %d dirs ...", len(w.WatchList()))

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %s", event)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(quietPeriod, rebuild)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// watchDirs returns the photo directory, every directory holding an indexed
// image, and the manifest's directory.
func watchDirs(c *gallery.Config, s *gallery.Site) []string {
	dirs := []string{
		c.InDir,
		filepath.Dir(c.ContentPath),
	}
	for _, i := range s.Images {
		dirs = append(dirs, filepath.Dir(i.InPath))
	}

	slices.Sort(dirs)
	return slices.Compact(dirs)
}
