// Package docgen lays out a validated résumé as a paginated document model
// and serializes that model to the registered output formats.
package docgen

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"alfredoptarigan/resume-structurer/internal/models"
)

type Generator struct {
	registry *Registry
	geometry Geometry
	enabled  map[Format]bool
}

// NewGenerator restricts the registry to the enabled formats. An empty list
// enables everything registered.
func NewGenerator(registry *Registry, geometry Geometry, enabled []Format) (*Generator, error) {
	if geometry.ContentWidth() <= 0 || geometry.ContentHeight() <= 0 {
		return nil, fmt.Errorf("page geometry leaves no content area: %+v", geometry)
	}

	g := &Generator{registry: registry, geometry: geometry, enabled: make(map[Format]bool)}
	if len(enabled) == 0 {
		enabled = registry.Formats()
	}
	for _, f := range enabled {
		if _, ok := registry.Lookup(f); !ok {
			return nil, fmt.Errorf("format %q is enabled but has no encoder", f)
		}
		g.enabled[f] = true
	}
	return g, nil
}

func (g *Generator) encoder(f Format) (Encoder, error) {
	if !g.enabled[f] {
		return nil, &RenderError{Format: f, Err: ErrUnsupportedFormat}
	}
	enc, _ := g.registry.Lookup(f)
	return enc, nil
}

// Supports reports whether the format is enabled.
func (g *Generator) Supports(f Format) bool {
	return g.enabled[f]
}

func (g *Generator) Formats() []Format {
	var out []Format
	for _, f := range g.registry.Formats() {
		if g.enabled[f] {
			out = append(out, f)
		}
	}
	return out
}

// Extension returns the file extension for an enabled format.
func (g *Generator) Extension(f Format) (string, error) {
	enc, err := g.encoder(f)
	if err != nil {
		return "", err
	}
	return enc.Extension(), nil
}

func (g *Generator) ContentType(f Format) (string, error) {
	enc, err := g.encoder(f)
	if err != nil {
		return "", err
	}
	return enc.ContentType(), nil
}

// Model builds the paginated document for a record.
func (g *Generator) Model(rec *models.ResumeRecord) *DocumentModel {
	return BuildModel(rec, g.geometry)
}

// Render produces the document bytes for one format. The format is
// resolved before any layout work, so an unsupported format never reaches
// an encoder.
func (g *Generator) Render(ctx context.Context, rec *models.ResumeRecord, f Format) ([]byte, error) {
	enc, err := g.encoder(f)
	if err != nil {
		return nil, err
	}
	return encode(ctx, enc, f, g.Model(rec))
}

func encode(ctx context.Context, enc Encoder, f Format, doc *DocumentModel) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &RenderError{Format: f, Err: fmt.Errorf("%w: encoder panic: %v", ErrSerializationFailed, r)}
		}
	}()

	var buf bytes.Buffer
	if err := enc.Encode(ctx, doc, &buf); err != nil {
		return nil, &RenderError{Format: f, Err: fmt.Errorf("%w: %w", ErrSerializationFailed, err)}
	}
	return buf.Bytes(), nil
}

type Result struct {
	Format Format
	Data   []byte
	Err    error
}

// RenderAll renders each format concurrently from one shared model. Results
// keep the order of formats and fail independently.
func (g *Generator) RenderAll(ctx context.Context, rec *models.ResumeRecord, formats []Format) []Result {
	results := make([]Result, len(formats))
	var doc *DocumentModel

	var wg sync.WaitGroup
	for i, f := range formats {
		results[i].Format = f
		enc, err := g.encoder(f)
		if err != nil {
			results[i].Err = err
			continue
		}
		if doc == nil {
			doc = g.Model(rec)
		}

		wg.Add(1)
		go func(i int, enc Encoder, f Format) {
			defer wg.Done()
			results[i].Data, results[i].Err = encode(ctx, enc, f, doc)
		}(i, enc, f)
	}
	wg.Wait()
	return results
}
