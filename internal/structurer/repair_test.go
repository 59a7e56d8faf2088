package structurer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairs(t *testing.T) {
	tests := []struct {
		name   string
		repair func(string) string
		in     string
		want   string
	}{
		{"fenced json", stripFences, "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading and trailing prose", stripFences, `Here you go: {"a": 1} Hope this helps`, `{"a": 1}`},
		{"truncated tail kept", stripFences, `{"a": {"b": 1}, "c": [1`, `{"a": {"b": 1}, "c": [1`},
		{"no object left alone", stripFences, "not json", "not json"},
		{"glyph outside string", stripGlyphs, `{"s": [● "Go"]}`, `{"s": [ "Go"]}`},
		{"glyph inside string kept", stripGlyphs, `{"s": ["● Go"]}`, `{"s": ["● Go"]}`},
		{"newline inside string", replaceControlChars, "{\"a\": \"x\ny\"}", `{"a": "x y"}`},
		{"newline outside string kept", replaceControlChars, "{\n\"a\": 1}", "{\n\"a\": 1}"},
		{"nul outside string dropped", replaceControlChars, "{\x00\"a\": 1}", `{"a": 1}`},
		{"single quotes", coerceSingleQuotes, `{'name': 'Jane O\'Neil'}`, `{"name": "Jane O'Neil"}`},
		{"double quote inside single", coerceSingleQuotes, `{'q': 'say "hi"'}`, `{"q": "say \"hi\""}`},
		{"apostrophe inside string", coerceSingleQuotes, `{"q": "it's"}`, `{"q": "it's"}`},
		{"trailing commas", removeTrailingCommas, `{"a": [1, 2,], }`, `{"a": [1, 2] }`},
		{"comma inside string", removeTrailingCommas, `{"a": "x,}"}`, `{"a": "x,}"}`},
		{"close brackets", closeBrackets, `{"a": [1, 2`, `{"a": [1, 2]}`},
		{"close open string", closeBrackets, `{"a": "unterminated`, `{"a": "unterminated"}`},
		{"dangling comma before close", closeBrackets, `{"a": 1,`, `{"a": 1}`},
		{"balanced untouched", closeBrackets, `{"a": "}"}`, `{"a": "}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.repair(tt.in))
		})
	}
}

func TestApplyRepairsReportsOnlyChanges(t *testing.T) {
	out, applied := applyRepairs("```json\n{\"a\": [1,],}\n```", DefaultRepairs)
	assert.Equal(t, `{"a": [1]}`, out)
	assert.Equal(t, []string{"strip_fences", "trailing_commas"}, applied)
}
