package docgen

type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockParagraph  BlockKind = "paragraph"
	BlockBulletList BlockKind = "bullet_list"
	BlockTable      BlockKind = "table"
)

type BlockStyle string

const (
	StyleNormal   BlockStyle = ""
	StyleCentered BlockStyle = "centered"
	StyleMuted    BlockStyle = "muted"
)

// Block is one renderable unit. Which fields are set depends on Kind:
// headings and paragraphs use Text, bullet lists use Items, tables use
// Header and Rows.
type Block struct {
	Kind    BlockKind
	Section string
	Level   int
	Style   BlockStyle
	Text    string
	Items   []string
	Header  []string
	Rows    [][]string
	// Height is the estimated vertical space in points.
	Height float64
}

type Page struct {
	Number int
	Blocks []Block
	Used   float64
	// Overflow is set when a block taller than the page was force-placed.
	Overflow bool
}

// Geometry is the page size and uniform margin, in points.
type Geometry struct {
	Width  float64
	Height float64
	Margin float64
}

// Letter is 8.5x11in with half-inch margins.
var Letter = Geometry{Width: 612, Height: 792, Margin: 36}

func (g Geometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

func (g Geometry) ContentHeight() float64 {
	return g.Height - 2*g.Margin
}

// DocumentModel is the format-independent paginated document every encoder
// serializes.
type DocumentModel struct {
	Title    string
	Author   string
	Geometry Geometry
	Pages    []Page
}

// Blocks returns every block in page order.
func (d *DocumentModel) Blocks() []Block {
	var out []Block
	for _, p := range d.Pages {
		out = append(out, p.Blocks...)
	}
	return out
}
