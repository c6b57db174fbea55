// autocaption writes AI-suggested descriptions into images that lack one.
// The descriptions are the caption fallback when a template renders nothing.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/barasher/go-exiftool"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
	"k8s.io/klog/v2"

	"github.com/AlwaysRichard/gkd-gallery/pkg/gallery"
)

var (
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write descriptions")
	overwrite = flag.Bool("o", false, "overwrite existing descriptions")
	modelName = flag.String("model", gallery.DefaultModel, "Gemini model to describe images with")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("No input directories provided. Usage: %s [-n] [-o] <input_dir1> [input_dir2 ...]", os.Args[0])
	}

	if err := godotenv.Load(); err != nil {
		klog.V(1).Infof("no .env loaded: %v", err)
	}

	key := os.Getenv("GOOGLE_AI_API_KEY")
	if key == "" {
		klog.Exitf("GOOGLE_AI_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		klog.Exitf("genai client: %v", err)
	}

	e, err := exiftool.NewExiftool()
	if err != nil {
		klog.Exitf("exiftool: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			klog.Errorf("Failed to close exiftool: %v", err)
		}
	}()

	total, described := 0, 0
	for _, dir := range flag.Args() {
		is, err := gallery.Find(dir)
		if err != nil {
			klog.Errorf("unable to index %s: %v", dir, err)
			continue
		}
		klog.Infof("Processing %s with %d images", dir, len(is))

		for _, i := range is {
			total++
			if !*overwrite && i.Description != "" {
				klog.V(1).Infof("%s has a description: %q", i.InPath, i.Description)
				continue
			}

			desc, err := gallery.Describe(ctx, client, *modelName, i)
			if err != nil {
				klog.Errorf("describe %s: %v", i.InPath, err)
				continue
			}
			if desc == "" {
				klog.Warningf("empty description for %s", i.InPath)
				continue
			}

			klog.Infof("describing %s: %q", i.InPath, desc)
			if *dryRun {
				continue
			}

			o := e.ExtractMetadata(i.InPath)
			o[0].SetString("ImageDescription", desc)
			e.WriteMetadata(o)
			if o[0].Err != nil {
				klog.Errorf("Failed to write metadata for %s: %v", i.InPath, o[0].Err)
				continue
			}
			described++
		}
	}

	klog.Infof("autocaption completed. Described %d of %d images", described, total)
}
