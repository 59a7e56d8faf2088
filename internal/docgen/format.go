package docgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

type Format string

const (
	FormatPDF       Format = "pdf"
	FormatDOCX      Format = "docx"
	FormatHTML      Format = "html"
	FormatMarkdown  Format = "markdown"
	FormatLaTeX     Format = "latex"
	FormatXLSX      Format = "xlsx"
	FormatChromePDF Format = "chrome-pdf"
)

var formatAliases = map[string]Format{
	"md":  FormatMarkdown,
	"tex": FormatLaTeX,
	"htm": FormatHTML,
}

// ParseFormat normalizes a user supplied format name. It does not check
// that the format is registered.
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))
	if f, ok := formatAliases[s]; ok {
		return f
	}
	return Format(s)
}

var (
	ErrUnsupportedFormat   = errors.New("unsupported output format")
	ErrSerializationFailed = errors.New("serialization failed")
)

// RenderError reports which format failed. It unwraps to
// ErrUnsupportedFormat or ErrSerializationFailed.
type RenderError struct {
	Format Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Encoder serializes a document model. Encoders must only read the model.
type Encoder interface {
	Encode(ctx context.Context, doc *DocumentModel, w io.Writer) error
	ContentType() string
	Extension() string
}

type Registry struct {
	encoders map[Format]Encoder
}

func NewRegistry() *Registry {
	return &Registry{encoders: make(map[Format]Encoder)}
}

func (r *Registry) Register(f Format, enc Encoder) {
	r.encoders[f] = enc
}

func (r *Registry) Lookup(f Format) (Encoder, bool) {
	enc, ok := r.encoders[f]
	return enc, ok
}

func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.encoders))
	for f := range r.encoders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type RegistryOptions struct {
	// ChromePath overrides the Chrome binary used by chrome-pdf.
	ChromePath string
}

// DefaultRegistry registers every built-in encoder.
func DefaultRegistry(opts RegistryOptions) *Registry {
	html := NewHTMLEncoder()

	r := NewRegistry()
	r.Register(FormatPDF, NewPDFEncoder())
	r.Register(FormatDOCX, NewDOCXEncoder())
	r.Register(FormatHTML, html)
	r.Register(FormatMarkdown, NewMarkdownEncoder(html))
	r.Register(FormatLaTeX, NewLaTeXEncoder())
	r.Register(FormatXLSX, NewXLSXEncoder())
	r.Register(FormatChromePDF, NewChromePDFEncoder(html, opts.ChromePath))
	return r
}
