package docgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"alfredoptarigan/resume-structurer/internal/models"
)

// Typography shared by the height estimator and the PDF encoder, so the
// estimated pagination is what ends up on paper.
const (
	bodySize     = 10.0
	mutedSize    = 9.0
	leading      = 1.3
	charWidth    = 0.52 // average Helvetica glyph width per point of size
	bulletIndent = 14.0
	cellPadding  = 3.0
)

var headingSizes = map[int]float64{1: 20, 2: 13, 3: 11}

var sectionTitles = map[string]string{
	models.SectionExperience:     "Experience",
	models.SectionEducation:      "Education",
	models.SectionSkills:         "Skills",
	models.SectionProjects:       "Projects",
	models.SectionCertifications: "Certifications",
}

const separator = " · "

func fontSize(b Block) float64 {
	if b.Kind == BlockHeading {
		if s, ok := headingSizes[b.Level]; ok {
			return s
		}
	}
	if b.Style == StyleMuted {
		return mutedSize
	}
	return bodySize
}

func lineHeight(size float64) float64 {
	return size * leading
}

// spacing is the gap before and after a block.
func spacing(b Block) (before, after float64) {
	switch {
	case b.Kind == BlockHeading && b.Level == 1:
		return 0, 4
	case b.Kind == BlockHeading && b.Level == 2:
		return 10, 4
	case b.Kind == BlockHeading:
		return 6, 2
	case b.Kind == BlockTable:
		return 2, 6
	}
	return 0, 4
}

// wrapText greedily breaks text into lines of at most width points using the
// average glyph width. Words longer than a line are split.
func wrapText(text string, size, width float64) []string {
	limit := int(math.Floor(width / (size * charWidth)))
	if limit < 1 {
		limit = 1
	}

	var lines []string
	var line strings.Builder
	lineLen := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineLen = 0
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			if lineLen > 0 {
				flush()
			}
			runes := []rune(word)
			line.WriteString(string(runes[:limit]))
			lineLen = limit
			flush()
			word = string(runes[limit:])
		}
		n := utf8.RuneCountInString(word)
		if n == 0 {
			continue
		}
		if lineLen > 0 && lineLen+1+n > limit {
			flush()
		}
		if lineLen > 0 {
			line.WriteByte(' ')
			lineLen++
		}
		line.WriteString(word)
		lineLen += n
	}
	if lineLen > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// columnWidths gives the first column of a table 28% and splits the rest.
func columnWidths(cols int, width float64) []float64 {
	if cols <= 1 {
		return []float64{width}
	}
	widths := make([]float64, cols)
	widths[0] = width * 0.28
	rest := (width - widths[0]) / float64(cols-1)
	for i := 1; i < cols; i++ {
		widths[i] = rest
	}
	return widths
}

func rowHeight(cells []string, widths []float64) float64 {
	lines := 1
	for i, c := range cells {
		if i >= len(widths) {
			break
		}
		lines = max(lines, len(wrapText(c, bodySize, widths[i]-2*cellPadding)))
	}
	return float64(lines)*lineHeight(bodySize) + 2*cellPadding
}

func tableColumns(b Block) int {
	cols := len(b.Header)
	for _, r := range b.Rows {
		cols = max(cols, len(r))
	}
	return cols
}

// estimateHeight is the vertical space a block occupies at the given
// content width, including spacing.
func estimateHeight(b Block, width float64) float64 {
	before, after := spacing(b)
	size := fontSize(b)
	lh := lineHeight(size)

	var body float64
	switch b.Kind {
	case BlockHeading, BlockParagraph:
		body = float64(len(wrapText(b.Text, size, width))) * lh
	case BlockBulletList:
		for _, item := range b.Items {
			body += float64(len(wrapText(item, size, width-bulletIndent))) * lh
		}
	case BlockTable:
		widths := columnWidths(tableColumns(b), width)
		if len(b.Header) > 0 {
			body += rowHeight(b.Header, widths)
		}
		for _, r := range b.Rows {
			body += rowHeight(r, widths)
		}
	}
	return before + body + after
}

// layoutBlocks maps a record to blocks in the fixed section order. Empty
// sections produce nothing.
func layoutBlocks(rec *models.ResumeRecord) []Block {
	var blocks []Block
	for _, section := range models.SectionOrder {
		switch section {
		case models.SectionPersonal:
			blocks = append(blocks, personalBlocks(rec.Personal)...)
		case models.SectionExperience:
			blocks = append(blocks, experienceBlocks(rec.Experience)...)
		case models.SectionEducation:
			blocks = append(blocks, educationBlocks(rec.Education)...)
		case models.SectionSkills:
			blocks = append(blocks, skillBlocks(rec.Skills, rec.SkillCategories)...)
		case models.SectionProjects:
			blocks = append(blocks, projectBlocks(rec.Projects)...)
		case models.SectionCertifications:
			blocks = append(blocks, certificationBlocks(rec.Certifications)...)
		}
	}
	return blocks
}

func heading(section string, level int, text string) Block {
	b := Block{Kind: BlockHeading, Section: section, Level: level, Text: text}
	if level == 1 {
		b.Style = StyleCentered
	}
	return b
}

func paragraph(section string, style BlockStyle, text string) Block {
	return Block{Kind: BlockParagraph, Section: section, Style: style, Text: text}
}

// joinNonEmpty joins the non-blank parts with the separator.
func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, separator)
}

func dateRange(start, end *models.Date, open bool) string {
	switch {
	case start != nil && end != nil:
		return start.Display() + " – " + end.Display()
	case start != nil && open:
		return start.Display() + " – Present"
	case start != nil:
		return start.Display()
	case end != nil:
		return end.Display()
	}
	return ""
}

func personalBlocks(p models.Personal) []Block {
	const s = models.SectionPersonal
	blocks := []Block{heading(s, 1, p.Name)}

	contact := append([]string{p.Email, p.Phone, p.Location}, p.Links...)
	if line := joinNonEmpty(contact...); line != "" {
		blocks = append(blocks, paragraph(s, StyleCentered, line))
	}
	if p.Title != "" {
		blocks = append(blocks, paragraph(s, StyleCentered, p.Title))
	}
	if p.Summary != "" {
		blocks = append(blocks, paragraph(s, StyleNormal, p.Summary))
	}
	return blocks
}

func experienceBlocks(entries []models.Experience) []Block {
	const s = models.SectionExperience
	if len(entries) == 0 {
		return nil
	}
	blocks := []Block{heading(s, 2, sectionTitles[s])}
	for _, e := range entries {
		start := e.Start
		blocks = append(blocks, heading(s, 3, e.Title+", "+e.Employer))
		if meta := joinNonEmpty(dateRange(&start, e.End, true), e.Location); meta != "" {
			blocks = append(blocks, paragraph(s, StyleMuted, meta))
		}
		if len(e.Bullets) > 0 {
			blocks = append(blocks, Block{Kind: BlockBulletList, Section: s, Items: e.Bullets})
		}
	}
	return blocks
}

func educationBlocks(entries []models.Education) []Block {
	const s = models.SectionEducation
	if len(entries) == 0 {
		return nil
	}
	blocks := []Block{heading(s, 2, sectionTitles[s])}
	for _, e := range entries {
		blocks = append(blocks, heading(s, 3, e.Institution))
		if e.Degree != "" {
			blocks = append(blocks, paragraph(s, StyleNormal, e.Degree))
		}
		var gpa string
		if e.GPA != nil {
			gpa = "GPA " + strconv.FormatFloat(*e.GPA, 'f', -1, 64)
		}
		if meta := joinNonEmpty(dateRange(e.Start, e.End, false), gpa, e.Location); meta != "" {
			blocks = append(blocks, paragraph(s, StyleMuted, meta))
		}
	}
	return blocks
}

func skillBlocks(skills []string, categories []models.SkillCategory) []Block {
	const s = models.SectionSkills
	if len(skills) == 0 && len(categories) == 0 {
		return nil
	}
	blocks := []Block{heading(s, 2, sectionTitles[s])}
	if len(categories) > 0 {
		rows := make([][]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, []string{c.Name, strings.Join(c.Skills, ", ")})
		}
		return append(blocks, Block{Kind: BlockTable, Section: s, Header: []string{"Category", "Skills"}, Rows: rows})
	}
	return append(blocks, paragraph(s, StyleNormal, strings.Join(skills, ", ")))
}

func projectBlocks(entries []models.Project) []Block {
	const s = models.SectionProjects
	if len(entries) == 0 {
		return nil
	}
	blocks := []Block{heading(s, 2, sectionTitles[s])}
	for _, p := range entries {
		blocks = append(blocks, heading(s, 3, p.Name))
		if p.Description != "" {
			blocks = append(blocks, paragraph(s, StyleNormal, p.Description))
		}
		var tech string
		if len(p.Technologies) > 0 {
			tech = "Technologies: " + strings.Join(p.Technologies, ", ")
		}
		if meta := joinNonEmpty(tech, p.URL); meta != "" {
			blocks = append(blocks, paragraph(s, StyleMuted, meta))
		}
	}
	return blocks
}

func certificationBlocks(entries []models.Certification) []Block {
	const s = models.SectionCertifications
	if len(entries) == 0 {
		return nil
	}
	blocks := []Block{heading(s, 2, sectionTitles[s])}
	for _, c := range entries {
		blocks = append(blocks, heading(s, 3, c.Name))
		var date string
		if c.Date != nil {
			date = c.Date.Display()
		}
		if meta := joinNonEmpty(c.Issuer, date); meta != "" {
			blocks = append(blocks, paragraph(s, StyleMuted, meta))
		}
	}
	return blocks
}

// BuildModel lays out and paginates a record.
func BuildModel(rec *models.ResumeRecord, geo Geometry) *DocumentModel {
	blocks := layoutBlocks(rec)
	for i := range blocks {
		blocks[i].Height = estimateHeight(blocks[i], geo.ContentWidth())
	}
	return &DocumentModel{
		Title:    fmt.Sprintf("%s - Resume", rec.Personal.Name),
		Author:   rec.Personal.Name,
		Geometry: geo,
		Pages:    paginate(blocks, geo.ContentHeight()),
	}
}
