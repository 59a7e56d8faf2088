package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoText              = errors.New("no text content found in document")
)

type TextExtractor interface {
	Detect(data []byte) (string, error)
	Extract(data []byte) (*ExtractedText, error)
	ExtractFile(path string) (*ExtractedText, error)
}

type ExtractedText struct {
	Text        string
	ContentType string
	PageCount   int
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Detect sniffs the content and returns MIMEPDF or MIMEDOCX.
func (e *textExtractor) Detect(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(MIMEPDF):
		return MIMEPDF, nil
	case mt.Is(MIMEDOCX):
		return MIMEDOCX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mt.String())
}

func (e *textExtractor) ExtractFile(path string) (*ExtractedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return e.Extract(data)
}

func (e *textExtractor) Extract(data []byte) (*ExtractedText, error) {
	contentType, err := e.Detect(data)
	if err != nil {
		return nil, err
	}

	out := &ExtractedText{ContentType: contentType}
	switch contentType {
	case MIMEPDF:
		out.Text, out.PageCount, err = pdfText(data)
	case MIMEDOCX:
		out.Text, err = docxText(data)
		out.PageCount = 1 + strings.Count(out.Text, "\f")
		out.Text = strings.ReplaceAll(out.Text, "\f", "\n")
	}
	if err != nil {
		return nil, err
	}

	out.Text = CleanText(out.Text)
	if out.Text == "" {
		return nil, ErrNoText
	}
	return out, nil
}

func pdfText(data []byte) (text string, pages int, err error) {
	defer recoverMalformedPDF(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pt, perr := pageText(page)
		if perr != nil {
			// unreadable pages are skipped
			continue
		}

		textBuilder.WriteString(pt)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), totalPage, nil
}

// recoverMalformedPDF reports a panic from the PDF reader as
// ErrUnsupportedFileType. Deferred directly by the caller.
func recoverMalformedPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: malformed PDF: %v", ErrUnsupportedFileType, r)
	}
}

// pageText reads a page row by row so text drawn on one visual line stays
// on one line.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		for i, word := range row.Content {
			if i > 0 && !strings.HasPrefix(word.S, " ") && !strings.HasSuffix(row.Content[i-1].S, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(word.S)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// docxText walks word/document.xml, emitting one line per paragraph and a
// form feed at each explicit page break.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: DOCX without word/document.xml", ErrUnsupportedFileType)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX body: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	inText := false
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse DOCX body: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				if attr(el, "type") == "page" {
					b.WriteByte('\f')
				} else {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			case "tc":
				b.WriteByte('\t')
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return b.String(), nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
