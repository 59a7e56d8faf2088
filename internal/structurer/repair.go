package structurer

import (
	"strings"
	"unicode"
)

// Repair is one text-level fix for malformed model output. Apply must be a
// no-op on text it has nothing to fix.
type Repair struct {
	Name  string
	Apply func(string) string
}

// DefaultRepairs run in order, once, before the single retry.
var DefaultRepairs = []Repair{
	{Name: "strip_fences", Apply: stripFences},
	{Name: "strip_glyphs", Apply: stripGlyphs},
	{Name: "control_chars", Apply: replaceControlChars},
	{Name: "single_quotes", Apply: coerceSingleQuotes},
	{Name: "trailing_commas", Apply: removeTrailingCommas},
	{Name: "close_brackets", Apply: closeBrackets},
}

// applyRepairs returns the repaired text and the names of repairs that
// changed it.
func applyRepairs(s string, repairs []Repair) (string, []string) {
	var applied []string
	for _, r := range repairs {
		out := r.Apply(s)
		if out != s {
			applied = append(applied, r.Name)
			s = out
		}
	}
	return s, applied
}

// quoteState tracks whether a scan position is inside a double-quoted string.
type quoteState struct {
	inString bool
	escaped  bool
}

// step advances past r and reports whether r itself belonged to a string.
func (q *quoteState) step(r rune) bool {
	in := q.inString
	switch {
	case q.inString && q.escaped:
		q.escaped = false
	case q.inString && r == '\\':
		q.escaped = true
	case r == '"':
		q.inString = !q.inString
	}
	return in
}

func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)

	lines := strings.Split(trimmed, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	text := strings.Join(kept, "\n")

	start := strings.Index(text, "{")
	if start < 0 {
		return s
	}
	text = text[start:]

	// Drop trailing prose, but keep a tail that looks like truncated JSON.
	if end := strings.LastIndex(text, "}"); end >= 0 {
		tail := text[end+1:]
		if !strings.ContainsAny(tail, "[\":") {
			text = text[:end+1]
		}
	}

	if text == trimmed {
		return s
	}
	return text
}

func stripGlyphs(s string) string {
	var q quoteState
	var b strings.Builder
	for _, r := range s {
		if !q.step(r) && isBulletGlyph(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBulletGlyph(r rune) bool {
	switch r {
	case '●', '•', '▪', '◦', '‣':
		return true
	}
	return false
}

func replaceControlChars(s string) string {
	var q quoteState
	var b strings.Builder
	for _, r := range s {
		in := q.step(r)
		if r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
			continue
		}
		switch {
		case in:
			b.WriteByte(' ')
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// coerceSingleQuotes rewrites 'text' outside double-quoted strings as "text".
func coerceSingleQuotes(s string) string {
	runes := []rune(s)
	var q quoteState
	var b strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if q.inString || r != '\'' {
			q.step(r)
			b.WriteRune(r)
			continue
		}

		var inner strings.Builder
		j := i + 1
		closed := false
		for j < len(runes) {
			c := runes[j]
			if c == '\\' && j+1 < len(runes) {
				if runes[j+1] == '\'' {
					inner.WriteRune('\'')
				} else {
					inner.WriteRune(c)
					inner.WriteRune(runes[j+1])
				}
				j += 2
				continue
			}
			if c == '\'' {
				closed = true
				break
			}
			if c == '"' {
				inner.WriteString(`\"`)
			} else {
				inner.WriteRune(c)
			}
			j++
		}

		if !closed {
			b.WriteString(string(runes[i:]))
			break
		}
		b.WriteByte('"')
		b.WriteString(inner.String())
		b.WriteByte('"')
		i = j
	}
	return b.String()
}

func removeTrailingCommas(s string) string {
	runes := []rune(s)
	var q quoteState
	var b strings.Builder

	for i, r := range runes {
		if q.step(r) || r != ',' {
			b.WriteRune(r)
			continue
		}
		next := i + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next < len(runes) && (runes[next] == '}' || runes[next] == ']') {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// closeBrackets terminates an open string and closes any unbalanced objects
// and arrays at the end of the text.
func closeBrackets(s string) string {
	var q quoteState
	var stack []rune
	for _, r := range s {
		if q.step(r) {
			continue
		}
		switch r {
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == r {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 && !q.inString {
		return s
	}

	out := s
	if q.inString {
		out += `"`
	}
	out = strings.TrimRightFunc(out, unicode.IsSpace)
	out = strings.TrimSuffix(out, ",")
	for i := len(stack) - 1; i >= 0; i-- {
		out += string(stack[i])
	}
	return out
}
