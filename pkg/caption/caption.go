// Package caption renders image captions from EXIF metadata and a small
// placeholder template language.
//
// A template may contain:
//
//	{Name}             the value of a field
//	{Name,default}     the value of a field, or default when it is empty
//	{'text', Name}     text followed by the value, or nothing when it is empty
//
// Unknown or malformed tokens render as nothing. Stray "|" separators left
// behind by empty fields are tidied up.
package caption

import (
	"regexp"
	"slices"
	"strings"
)

var (
	leftoverToken = regexp.MustCompile(`\{[^}]*\}`)
	doublePipe    = regexp.MustCompile(`\s*\|\s*\|`)
	leadingPipe   = regexp.MustCompile(`^\s*\|\s*`)
	trailingPipe  = regexp.MustCompile(`\s*\|\s*$`)
)

// Render formats a caption for r using tmpl. It never fails; missing
// metadata renders as empty fields.
func Render(tmpl string, r Record) string {
	if tmpl == "" {
		return ""
	}

	vals := r.values()
	var b strings.Builder
	for _, s := range tokenize(tmpl) {
		switch s.kind {
		case literal:
			b.WriteString(s.text)
		case placeholder:
			b.WriteString(vals[s.field])
		case withDefault:
			if _, known := vals[s.field]; !known {
				continue
			}
			if v := vals[s.field]; v != "" {
				b.WriteString(v)
			} else {
				b.WriteString(s.text)
			}
		case conditional:
			if v := vals[s.field]; v != "" {
				b.WriteString(s.text)
				b.WriteString(v)
			}
		}
	}

	return cleanup(b.String())
}

func cleanup(s string) string {
	s = leftoverToken.ReplaceAllString(s, "")
	s = doublePipe.ReplaceAllString(s, " |")
	s = leadingPipe.ReplaceAllString(s, "")
	s = trailingPipe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Known reports whether name is a placeholder understood by Render.
func Known(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Unknown returns the field names tmpl references that Known rejects, in
// order of first use.
func Unknown(tmpl string) []string {
	var names []string
	for _, seg := range tokenize(tmpl) {
		if seg.kind == literal || Known(seg.field) || slices.Contains(names, seg.field) {
			continue
		}
		names = append(names, seg.field)
	}
	return names
}
