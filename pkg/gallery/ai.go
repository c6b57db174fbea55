package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used to describe images.
var DefaultModel = "gemini-2.5-flash"

var describePrompt = "Describe this photograph in one short sentence suitable as an image caption " +
	"and alt text. Mention the subject and, if recognizable, the place. Do not start with " +
	"\"This image\" or \"A photo of\". Do not use quotation marks or emoji."

// Describe asks a Gemini model for a one-sentence description of an image.
func Describe(ctx context.Context, client *genai.Client, model string, i *Image) (string, error) {
	bs, err := os.ReadFile(i.InPath)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(bs, mimeType(i.InPath)),
		genai.NewPartFromText(describePrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return cleanDescription(resp.Text()), nil
}

func mimeType(p string) string {
	if strings.EqualFold(filepath.Ext(p), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// cleanDescription keeps the first line of a model answer and drops
// surrounding quotes.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	if line, _, ok := strings.Cut(s, "\n"); ok {
		s = line
	}
	return strings.TrimSpace(strings.Trim(s, "\"'“”"))
}
