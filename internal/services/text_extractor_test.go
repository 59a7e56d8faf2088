package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-structurer/internal/docgen"
)

func TestExtractPDF(t *testing.T) {
	data := renderDocument(t, sampleRecord(t), docgen.FormatPDF)

	out, err := NewTextExtractor().Extract(data)
	require.NoError(t, err)

	assert.Equal(t, MIMEPDF, out.ContentType)
	assert.Equal(t, 1, out.PageCount)
	assert.Contains(t, out.Text, "Jane Doe")
	assert.Contains(t, out.Text, "Experience")
	assert.Contains(t, out.Text, "Built the billing pipeline")
}

func TestExtractDOCX(t *testing.T) {
	data := renderDocument(t, sampleRecord(t), docgen.FormatDOCX)

	out, err := NewTextExtractor().Extract(data)
	require.NoError(t, err)

	assert.Equal(t, MIMEDOCX, out.ContentType)
	assert.Equal(t, 1, out.PageCount)
	assert.Contains(t, out.Text, "Jane Doe\n")
	assert.Contains(t, out.Text, "Engineer, Acme")
	assert.Contains(t, out.Text, "Built the billing pipeline")
	assert.NotContains(t, out.Text, "\n\n")
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, renderDocument(t, sampleRecord(t), docgen.FormatDOCX), 0644))

	out, err := NewTextExtractor().ExtractFile(path)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "MIT")

	_, err = NewTextExtractor().ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestExtractRejectsUnsupportedTypes(t *testing.T) {
	e := NewTextExtractor()

	for name, data := range map[string][]byte{
		"plain text": []byte("Jane Doe\nEngineer"),
		"html":       []byte("<html><body>Jane</body></html>"),
		"png":        {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	} {
		_, err := e.Extract(data)
		assert.ErrorIs(t, err, ErrUnsupportedFileType, name)
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	data := renderDocument(t, sampleRecord(t), docgen.FormatPDF)

	// keep the header and trailer, scramble everything between
	broken := append([]byte{}, data...)
	for i := 64; i < len(broken)-64; i++ {
		broken[i] = '('
	}

	assert.NotPanics(t, func() {
		_, err := NewTextExtractor().Extract(broken)
		assert.Error(t, err)
	})
}

func TestRecoverMalformedPDF(t *testing.T) {
	read := func() (text string, err error) {
		defer recoverMalformedPDF(&err)
		panic("unexpected EOF in stream")
	}

	text, err := read()
	assert.Empty(t, text)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Contains(t, err.Error(), "unexpected EOF in stream")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Jane Doe\nEngineer\nAcme", CleanText("  Jane Doe  \n\n\t\nEngineer\n   Acme \n"))
	assert.Equal(t, "", CleanText(" \n \n"))
}
