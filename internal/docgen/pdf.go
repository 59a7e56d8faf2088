package docgen

import (
	"context"
	"io"

	"github.com/go-pdf/fpdf"
)

const pdfFont = "Helvetica"

// PDFEncoder draws each model page onto exactly one PDF page using the
// same wrapping as the height estimator. Section headings become top-level
// bookmarks and entry headings their children.
type PDFEncoder struct{}

func NewPDFEncoder() *PDFEncoder { return &PDFEncoder{} }

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	margin float64
	width  float64
}

func (e *PDFEncoder) Encode(_ context.Context, doc *DocumentModel, w io.Writer) error {
	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(g.Margin, g.Margin, g.Margin)
	pdf.SetAutoPageBreak(false, g.Margin)
	pdf.SetCellMargin(0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetCreator("resume-structurer", true)

	pw := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		margin: g.Margin,
		width:  g.ContentWidth(),
	}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, b := range page.Blocks {
			pw.block(b)
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func (pw *pdfWriter) block(b Block) {
	pdf := pw.pdf
	before, after := spacing(b)
	size := fontSize(b)
	lh := lineHeight(size)

	pdf.SetY(pdf.GetY() + before)
	style := ""
	if b.Kind == BlockHeading {
		style = "B"
	}
	pdf.SetFont(pdfFont, style, size)
	if b.Style == StyleMuted {
		pdf.SetTextColor(85, 85, 85)
	} else {
		pdf.SetTextColor(17, 17, 17)
	}
	align := "L"
	if b.Style == StyleCentered {
		align = "C"
	}

	switch b.Kind {
	case BlockHeading:
		switch b.Level {
		case 1, 2:
			pdf.Bookmark(pw.tr(b.Text), 0, -1)
		default:
			pdf.Bookmark(pw.tr(b.Text), 1, -1)
		}
		pw.lines(wrapText(b.Text, size, pw.width), lh, align)
		if b.Level == 2 {
			y := pdf.GetY()
			pdf.SetDrawColor(153, 153, 153)
			pdf.Line(pw.margin, y, pw.margin+pw.width, y)
		}
	case BlockParagraph:
		pw.lines(wrapText(b.Text, size, pw.width), lh, align)
	case BlockBulletList:
		for _, item := range b.Items {
			for j, line := range wrapText(item, size, pw.width-bulletIndent) {
				pdf.SetX(pw.margin)
				if j == 0 {
					pdf.CellFormat(bulletIndent, lh, pw.tr("•"), "", 0, "L", false, 0, "")
				} else {
					pdf.SetX(pw.margin + bulletIndent)
				}
				pdf.CellFormat(pw.width-bulletIndent, lh, pw.tr(line), "", 1, "L", false, 0, "")
			}
		}
	case BlockTable:
		pw.table(b)
	}

	pdf.SetY(pdf.GetY() + after)
}

func (pw *pdfWriter) lines(lines []string, lh float64, align string) {
	for _, line := range lines {
		pw.pdf.CellFormat(pw.width, lh, pw.tr(line), "", 1, align, false, 0, "")
	}
}

func (pw *pdfWriter) table(b Block) {
	pdf := pw.pdf
	widths := columnWidths(tableColumns(b), pw.width)
	lh := lineHeight(bodySize)
	pdf.SetDrawColor(153, 153, 153)

	row := func(cells []string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont(pdfFont, style, bodySize)

		h := rowHeight(cells, widths)
		x, y := pw.margin, pdf.GetY()
		for i, w := range widths {
			pdf.Rect(x, y, w, h, "D")
			if i < len(cells) {
				for k, line := range wrapText(cells[i], bodySize, w-2*cellPadding) {
					pdf.SetXY(x+cellPadding, y+cellPadding+float64(k)*lh)
					pdf.CellFormat(w-2*cellPadding, lh, pw.tr(line), "", 0, "L", false, 0, "")
				}
			}
			x += w
		}
		pdf.SetXY(pw.margin, y+h)
	}

	if len(b.Header) > 0 {
		row(b.Header, true)
	}
	for _, r := range b.Rows {
		row(r, false)
	}
}

func (e *PDFEncoder) ContentType() string { return "application/pdf" }

func (e *PDFEncoder) Extension() string { return ".pdf" }
