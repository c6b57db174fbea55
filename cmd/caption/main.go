// caption prints the caption a template renders for each image.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/caption"
	"github.com/AlwaysRichard/gkd-gallery/pkg/gallery"
)

var tmpl = flag.String("template", "{CameraMake}{' ', CameraModel}{' | ', FocalLength}{' | ', ShutterSpeedValue}{' | ', FNumber}{' | ', ISOSpeedRatings}", "caption template")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("usage: %s -template <template> <image> [image ...]", os.Args[0])
	}

	for _, name := range caption.Unknown(*tmpl) {
		klog.Warningf("template refers to unknown field %q; known fields: %s", name, strings.Join(caption.Fields, ", "))
	}

	e, err := exiftool.NewExiftool()
	if err != nil {
		klog.Exitf("exiftool: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			klog.Errorf("failed to close exiftool: %v", err)
		}
	}()

	for _, fi := range e.ExtractMetadata(flag.Args()...) {
		i, err := gallery.FromMetadata(fi)
		if err != nil {
			klog.Errorf("%v", err)
			continue
		}
		fmt.Printf("%s: %s\n", fi.File, caption.Render(*tmpl, i.Exif))
	}
}
