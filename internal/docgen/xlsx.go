package docgen

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	blocksSheet = "Blocks"
	pagesSheet  = "Pages"
)

// XLSXEncoder writes the model as a workbook: one row per block on the
// Blocks sheet and one row per page on the Pages sheet.
type XLSXEncoder struct{}

func NewXLSXEncoder() *XLSXEncoder { return &XLSXEncoder{} }

func blockText(b Block) string {
	switch b.Kind {
	case BlockBulletList:
		return strings.Join(b.Items, "\n")
	case BlockTable:
		rows := make([]string, 0, len(b.Rows)+1)
		if len(b.Header) > 0 {
			rows = append(rows, strings.Join(b.Header, " | "))
		}
		for _, r := range b.Rows {
			rows = append(rows, strings.Join(r, " | "))
		}
		return strings.Join(rows, "\n")
	}
	return b.Text
}

func (e *XLSXEncoder) Encode(_ context.Context, doc *DocumentModel, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", blocksSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(pagesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: doc.Title, Creator: doc.Author}); err != nil {
		return fmt.Errorf("failed to set properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(blocksSheet, "A1", &[]any{"Page", "Section", "Kind", "Level", "Text"}); err != nil {
		return err
	}
	row := 2
	for _, p := range doc.Pages {
		for _, b := range p.Blocks {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			level := any("")
			if b.Kind == BlockHeading {
				level = b.Level
			}
			if err := f.SetSheetRow(blocksSheet, cell, &[]any{p.Number, b.Section, string(b.Kind), level, blockText(b)}); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetSheetRow(pagesSheet, "A1", &[]any{"Page", "Blocks", "Used (pt)", "Overflow"}); err != nil {
		return err
	}
	for i, p := range doc.Pages {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(pagesSheet, cell, &[]any{p.Number, len(p.Blocks), p.Used, p.Overflow}); err != nil {
			return err
		}
	}

	for _, sheet := range []string{blocksSheet, pagesSheet} {
		if err := f.SetCellStyle(sheet, "A1", "E1", bold); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(blocksSheet, "E", "E", 80); err != nil {
		return err
	}

	return f.Write(w)
}

func (e *XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXEncoder) Extension() string { return ".xlsx" }
