package docgen

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DOCXEncoder writes a minimal WordprocessingML package. Headings use the
// Heading1-3 styles and model pages are separated by explicit page breaks.
type DOCXEncoder struct{}

func NewDOCXEncoder() *DOCXEncoder { return &DOCXEncoder{} }

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NS      string   `xml:"xmlns:w,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Content []any   `xml:",any"`
	SectPr  wSectPr `xml:"w:sectPr"`
}

type wP struct {
	XMLName xml.Name `xml:"w:p"`
	PPr     *wPPr    `xml:"w:pPr,omitempty"`
	Runs    []wR     `xml:"w:r"`
}

type wPPr struct {
	Style *wVal `xml:"w:pStyle,omitempty"`
	Jc    *wVal `xml:"w:jc,omitempty"`
	Ind   *wInd `xml:"w:ind,omitempty"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wInd struct {
	Left    int `xml:"w:left,attr"`
	Hanging int `xml:"w:hanging,attr,omitempty"`
}

type wR struct {
	RPr *wRPr     `xml:"w:rPr,omitempty"`
	Br  *wBr      `xml:"w:br,omitempty"`
	Tab *struct{} `xml:"w:tab,omitempty"`
	T   *wT       `xml:"w:t,omitempty"`
}

type wRPr struct {
	Bold  *struct{} `xml:"w:b,omitempty"`
	Color *wVal     `xml:"w:color,omitempty"`
	Size  *wVal     `xml:"w:sz,omitempty"`
}

type wBr struct {
	Type string `xml:"w:type,attr"`
}

type wT struct {
	Space string `xml:"xml:space,attr"`
	Text  string `xml:",chardata"`
}

type wTbl struct {
	XMLName xml.Name `xml:"w:tbl"`
	Pr      wTblPr   `xml:"w:tblPr"`
	Grid    []wWidth `xml:"w:tblGrid>w:gridCol"`
	Rows    []wTr    `xml:"w:tr"`
}

type wTblPr struct {
	Width   wTblWidth   `xml:"w:tblW"`
	Borders wTblBorders `xml:"w:tblBorders"`
}

type wTblWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type wWidth struct {
	W int `xml:"w:w,attr"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type wTblBorders struct {
	Top     wBorder `xml:"w:top"`
	Left    wBorder `xml:"w:left"`
	Bottom  wBorder `xml:"w:bottom"`
	Right   wBorder `xml:"w:right"`
	InsideH wBorder `xml:"w:insideH"`
	InsideV wBorder `xml:"w:insideV"`
}

type wTr struct {
	Cells []wTc `xml:"w:tc"`
}

type wTc struct {
	Width wTblWidth `xml:"w:tcPr>w:tcW"`
	P     []wP      `xml:"w:p"`
}

type wSectPr struct {
	PgSz  wPgSz  `xml:"w:pgSz"`
	PgMar wPgMar `xml:"w:pgMar"`
}

type wPgSz struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

type wPgMar struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

// twips converts points to twentieths of a point.
func twips(pt float64) int {
	return int(math.Round(pt * 20))
}

func textRun(text string, rpr *wRPr) wR {
	return wR{RPr: rpr, T: &wT{Space: "preserve", Text: text}}
}

var mutedRun = &wRPr{Color: &wVal{Val: "555555"}, Size: &wVal{Val: "18"}}

func docxParagraph(b Block) wP {
	p := wP{PPr: &wPPr{}}
	if b.Style == StyleCentered {
		p.PPr.Jc = &wVal{Val: "center"}
	}
	var rpr *wRPr
	switch {
	case b.Kind == BlockHeading:
		p.PPr.Style = &wVal{Val: fmt.Sprintf("Heading%d", b.Level)}
	case b.Style == StyleMuted:
		rpr = mutedRun
	}
	p.Runs = []wR{textRun(b.Text, rpr)}
	return p
}

func docxTable(b Block, width float64) wTbl {
	border := wBorder{Val: "single", Size: 4, Color: "999999"}
	cols := columnWidths(tableColumns(b), width)
	tbl := wTbl{
		Pr: wTblPr{
			Width:   wTblWidth{W: twips(width), Type: "dxa"},
			Borders: wTblBorders{Top: border, Left: border, Bottom: border, Right: border, InsideH: border, InsideV: border},
		},
	}
	for _, w := range cols {
		tbl.Grid = append(tbl.Grid, wWidth{W: twips(w)})
	}

	row := func(cells []string, bold bool) wTr {
		var rpr *wRPr
		if bold {
			rpr = &wRPr{Bold: &struct{}{}}
		}
		tr := wTr{}
		for i, w := range cols {
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			tr.Cells = append(tr.Cells, wTc{
				Width: wTblWidth{W: twips(w), Type: "dxa"},
				P:     []wP{{Runs: []wR{textRun(text, rpr)}}},
			})
		}
		return tr
	}
	if len(b.Header) > 0 {
		tbl.Rows = append(tbl.Rows, row(b.Header, true))
	}
	for _, r := range b.Rows {
		tbl.Rows = append(tbl.Rows, row(r, false))
	}
	return tbl
}

func documentXML(doc *DocumentModel) wDocument {
	g := doc.Geometry
	body := wBody{
		SectPr: wSectPr{
			PgSz: wPgSz{W: twips(g.Width), H: twips(g.Height)},
			PgMar: wPgMar{
				Top: twips(g.Margin), Right: twips(g.Margin), Bottom: twips(g.Margin), Left: twips(g.Margin),
				Header: 720, Footer: 720,
			},
		},
	}

	for i, page := range doc.Pages {
		if i > 0 {
			body.Content = append(body.Content, wP{Runs: []wR{{Br: &wBr{Type: "page"}}}})
		}
		for _, b := range page.Blocks {
			switch b.Kind {
			case BlockHeading, BlockParagraph:
				body.Content = append(body.Content, docxParagraph(b))
			case BlockBulletList:
				for _, item := range b.Items {
					body.Content = append(body.Content, wP{
						PPr:  &wPPr{Ind: &wInd{Left: twips(bulletIndent), Hanging: twips(bulletIndent)}},
						Runs: []wR{textRun("•", nil), {Tab: &struct{}{}}, textRun(item, nil)},
					})
				}
			case BlockTable:
				body.Content = append(body.Content, docxTable(b, g.ContentWidth()))
			}
		}
	}
	return wDocument{NS: wordNS, Body: body}
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Helvetica" w:hAnsi="Helvetica" w:cs="Helvetica"/><w:sz w:val="20"/></w:rPr></w:rPrDefault>
<w:pPrDefault><w:pPr><w:spacing w:after="80" w:line="260" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:keepNext/><w:jc w:val="center"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="40"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="200" w:after="80"/><w:pBdr><w:bottom w:val="single" w:sz="4" w:space="1" w:color="999999"/></w:pBdr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:pPr><w:keepNext/><w:spacing w:before="120" w:after="40"/><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:sz w:val="22"/></w:rPr></w:style>
</w:styles>`

const corePropsTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>%s</dc:title>
<dc:creator>%s</dc:creator>
</cp:coreProperties>`

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// docxEpoch stamps zip entries so identical models produce identical bytes.
var docxEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func (e *DOCXEncoder) Encode(_ context.Context, doc *DocumentModel, w io.Writer) error {
	body, err := xml.Marshal(documentXML(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/document.xml", append([]byte(xml.Header), body...)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
		{"word/styles.xml", []byte(stylesXML)},
		{"docProps/core.xml", fmt.Appendf(nil, corePropsTemplate, xmlEscape(doc.Title), xmlEscape(doc.Author))},
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: docxEpoch})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func (e *DOCXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

func (e *DOCXEncoder) Extension() string { return ".docx" }
