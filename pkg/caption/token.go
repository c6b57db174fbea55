package caption

import (
	"strings"
)

type kind int

const (
	literal kind = iota
	placeholder
	withDefault
	conditional
)

// segment is one piece of a parsed template.
type segment struct {
	kind kind
	// text is the literal text, the default value, or the conditional prefix.
	text  string
	field string
}

// tokenize splits a template into segments. Text that looks like a token but
// does not parse as one is kept as a literal and removed by cleanup later.
func tokenize(tmpl string) []segment {
	var segs []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{kind: literal, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		if tmpl[i] != '{' {
			lit.WriteByte(tmpl[i])
			i++
			continue
		}

		seg, n := parseToken(tmpl[i:])
		if n == 0 {
			lit.WriteByte('{')
			i++
			continue
		}

		flush()
		segs = append(segs, seg)
		i += n
	}
	flush()

	return segs
}

// parseToken parses a token at the start of s, which begins with '{'.
// It returns the number of bytes consumed, or 0 if s does not start with a token.
func parseToken(s string) (segment, int) {
	if len(s) > 1 && (s[1] == '\'' || s[1] == '"') {
		return parseConditional(s)
	}

	end := strings.IndexByte(s, '}')
	if end < 0 {
		return segment{}, 0
	}
	body := s[1:end]

	if name, def, ok := strings.Cut(body, ","); ok {
		if !isWord(name) || def == "" {
			return segment{}, 0
		}
		return segment{kind: withDefault, field: name, text: strings.TrimSpace(def)}, end + 1
	}

	if !isWord(body) {
		return segment{}, 0
	}
	return segment{kind: placeholder, field: body}, end + 1
}

// parseConditional parses {'text', Name} with either quote character.
// The text ends at the first matching quote that is followed by a comma and
// a name, so it may itself contain the other quote or a closing brace.
func parseConditional(s string) (segment, int) {
	q := s[1]
	for i := 2; i < len(s); i++ {
		if s[i] == '\n' {
			return segment{}, 0
		}
		if s[i] != q {
			continue
		}

		rest := s[i+1:]
		trimmed := strings.TrimLeft(rest, " \t\r\n\f\v")
		if !strings.HasPrefix(trimmed, ",") {
			continue
		}
		trimmed = strings.TrimLeft(trimmed[1:], " \t\r\n\f\v")

		j := 0
		for j < len(trimmed) && isWordByte(trimmed[j]) {
			j++
		}
		if j == 0 || j >= len(trimmed) || trimmed[j] != '}' {
			continue
		}

		consumed := len(s) - len(trimmed) + j + 1
		return segment{kind: conditional, text: s[2:i], field: trimmed[:j]}, consumed
	}
	return segment{}, 0
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
