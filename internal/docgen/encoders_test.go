package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-structurer/internal/models"
)

func render(t *testing.T, rec *models.ResumeRecord, f Format) []byte {
	t.Helper()
	g, err := NewGenerator(DefaultRegistry(RegistryOptions{}), Letter, nil)
	require.NoError(t, err)
	out, err := g.Render(context.Background(), rec, f)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	return out
}

func titles(items []pdf.Outline) []string {
	out := make([]string, len(items))
	for i, o := range items {
		out[i] = o.Title
	}
	return out
}

func TestPDFEncoderPagesAndBookmarks(t *testing.T) {
	data := render(t, sampleRecord(), FormatPDF)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())

	outline := r.Outline()
	assert.Equal(t, []string{"Jane Doe", "Experience", "Education", "Skills", "Projects", "Certifications"}, titles(outline.Child))
	assert.Equal(t, []string{"Engineer, Acme", "Intern, Globex"}, titles(outline.Child[1].Child))
	assert.Empty(t, outline.Child[3].Child)
}

func TestPDFEncoderOnePDFPagePerModelPage(t *testing.T) {
	rec := longRecord()
	doc := BuildModel(rec, Letter)
	data := render(t, rec, FormatPDF)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, len(doc.Pages), r.NumPage())
	assert.Len(t, r.Outline().Child[1].Child, len(rec.Experience))
}

type docxHeading struct {
	style, text string
}

func readDOCX(t *testing.T, data []byte) (headings []docxHeading, pageBreaks int) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var body []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			body, err = io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
		}
	}
	require.NotEmpty(t, body, "word/document.xml missing")

	dec := xml.NewDecoder(bytes.NewReader(body))
	var style string
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				style = ""
				text.Reset()
			case "pStyle", "br":
				for _, a := range el.Attr {
					if el.Name.Local == "pStyle" && a.Name.Local == "val" {
						style = a.Value
					}
					if el.Name.Local == "br" && a.Name.Local == "type" && a.Value == "page" {
						pageBreaks++
					}
				}
			}
		case xml.CharData:
			text.Write(el)
		case xml.EndElement:
			if el.Name.Local == "p" && style != "" {
				headings = append(headings, docxHeading{style, text.String()})
			}
		}
	}
	return headings, pageBreaks
}

func TestDOCXEncoderHeadingsAndPageBreaks(t *testing.T) {
	headings, breaks := readDOCX(t, render(t, sampleRecord(), FormatDOCX))

	assert.Equal(t, []docxHeading{
		{"Heading1", "Jane Doe"},
		{"Heading2", "Experience"},
		{"Heading3", "Engineer, Acme"},
		{"Heading3", "Intern, Globex"},
		{"Heading2", "Education"},
		{"Heading3", "MIT"},
		{"Heading2", "Skills"},
		{"Heading2", "Projects"},
		{"Heading3", "resume-cli"},
		{"Heading2", "Certifications"},
		{"Heading3", "CKA"},
	}, headings)
	assert.Zero(t, breaks)

	rec := longRecord()
	_, breaks = readDOCX(t, render(t, rec, FormatDOCX))
	assert.Equal(t, len(BuildModel(rec, Letter).Pages)-1, breaks)
}

func TestDOCXEncoderIsDeterministic(t *testing.T) {
	assert.Equal(t, render(t, sampleRecord(), FormatDOCX), render(t, sampleRecord(), FormatDOCX))
}

func TestHTMLEncoder(t *testing.T) {
	rec := longRecord()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(render(t, rec, FormatHTML)))
	require.NoError(t, err)

	assert.Equal(t, len(BuildModel(rec, Letter).Pages), doc.Find("section.page").Length())
	assert.Equal(t, "Jane Doe - Resume", doc.Find("title").Text())

	var sections []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		sections = append(sections, s.Text())
	})
	assert.Equal(t, []string{"Experience", "Education", "Skills", "Projects", "Certifications"}, sections)
	assert.Equal(t, len(rec.Experience), doc.Find(`h3[data-section="experience"]`).Length())
	assert.Equal(t, 2, doc.Find(`table[data-section="skills"] tbody tr`).Length())
	assert.Equal(t, "R&D tool for parsing 100% of résumés", doc.Find(`p[data-section="projects"]`).First().Text())
}

func TestMarkdownEncoder(t *testing.T) {
	md := string(render(t, sampleRecord(), FormatMarkdown))

	for _, want := range []string{
		"# Jane Doe",
		"## Experience",
		"### Engineer, Acme",
		"Built the billing pipeline",
		"## Skills",
		"Languages",
		"## Certifications",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "<section")
	assert.Less(t, strings.Index(md, "## Experience"), strings.Index(md, "## Education"))
}

func TestLaTeXEncoder(t *testing.T) {
	tex := string(render(t, sampleRecord(), FormatLaTeX))

	assert.True(t, strings.HasPrefix(tex, `\documentclass`))
	assert.Contains(t, tex, `paperwidth=612pt, paperheight=792pt, margin=36pt`)
	assert.Contains(t, tex, `\section*{Experience}`)
	assert.Contains(t, tex, `\subsection*{Engineer, Acme}`)
	assert.Contains(t, tex, `R\&D tool for parsing 100\% of résumés`)
	assert.Contains(t, tex, `\textbf{Category} & \textbf{Skills} \\ \hline`)
	assert.Contains(t, tex, `Languages & Go, Python \\ \hline`)
	assert.NotContains(t, tex, `\newpage`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(tex), `\end{document}`))

	rec := longRecord()
	tex = string(render(t, rec, FormatLaTeX))
	assert.Equal(t, len(BuildModel(rec, Letter).Pages)-1, strings.Count(tex, `\newpage`))
}

func TestEscapeLaTeX(t *testing.T) {
	assert.Equal(t, `50\% \& \$5 \{x\} a\_b \textbackslash{}n`, escapeLaTeX(`50% & $5 {x} a_b \n`))
}

func TestXLSXEncoder(t *testing.T) {
	rec := sampleRecord()
	doc := BuildModel(rec, Letter)

	f, err := excelize.OpenReader(bytes.NewReader(render(t, rec, FormatXLSX)))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Blocks", "Pages"}, f.GetSheetList())

	rows, err := f.GetRows("Blocks")
	require.NoError(t, err)
	require.Len(t, rows, len(doc.Blocks())+1)
	assert.Equal(t, []string{"Page", "Section", "Kind", "Level", "Text"}, rows[0])
	assert.Equal(t, []string{"1", "personal", "heading", "1", "Jane Doe"}, rows[1])

	pages, err := f.GetRows("Pages")
	require.NoError(t, err)
	assert.Len(t, pages, len(doc.Pages)+1)
}

func TestChromePDFEncoder(t *testing.T) {
	chrome := os.Getenv("CHROME_PATH")
	if chrome == "" {
		t.Skip("CHROME_PATH not set")
	}

	g, err := NewGenerator(DefaultRegistry(RegistryOptions{ChromePath: chrome}), Letter, []Format{FormatChromePDF})
	require.NoError(t, err)
	data, err := g.Render(context.Background(), sampleRecord(), FormatChromePDF)
	require.NoError(t, err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
}
