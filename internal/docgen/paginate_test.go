package docgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(heights ...float64) []Block {
	blocks := make([]Block, len(heights))
	for i, h := range heights {
		blocks[i] = Block{Kind: BlockParagraph, Height: h}
	}
	return blocks
}

func pageSizes(pages []Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = len(p.Blocks)
	}
	return out
}

func TestPaginateStartsNewPageOnOverflow(t *testing.T) {
	pages := paginate(sized(30, 30, 30), 70)

	assert.Equal(t, []int{2, 1}, pageSizes(pages))
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.False(t, pages[0].Overflow)
	assert.False(t, pages[1].Overflow)
}

func TestPaginateForcePlacesOversizedBlock(t *testing.T) {
	pages := paginate(sized(10, 100, 10), 50)

	require.Equal(t, []int{1, 1, 1}, pageSizes(pages))
	assert.False(t, pages[0].Overflow)
	assert.True(t, pages[1].Overflow)
	assert.False(t, pages[2].Overflow)
}

func TestPaginateOversizedFirstBlockStaysOnFirstPage(t *testing.T) {
	pages := paginate(sized(100, 10), 50)

	assert.Equal(t, []int{1, 1}, pageSizes(pages))
	assert.True(t, pages[0].Overflow)
}

func TestPaginateEmpty(t *testing.T) {
	pages := paginate(nil, 50)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Blocks)
}

func TestBuildModelPaginatesLongRecord(t *testing.T) {
	rec := longRecord()
	doc := BuildModel(rec, Letter)

	require.Greater(t, len(doc.Pages), 1)
	assert.Len(t, doc.Blocks(), len(layoutBlocks(rec)))
	for _, p := range doc.Pages {
		if !p.Overflow {
			assert.LessOrEqual(t, p.Used, Letter.ContentHeight(), "page %d", p.Number)
		}
	}
	assert.Equal(t, "Jane Doe - Resume", doc.Title)
}

func TestBuildModelIsDeterministic(t *testing.T) {
	assert.Equal(t, BuildModel(longRecord(), Letter), BuildModel(longRecord(), Letter))
}

func heading(level int, height float64) Block {
	return Block{Kind: BlockHeading, Level: level, Height: height}
}

func TestPaginateKeepsHeadingWithContent(t *testing.T) {
	blocks := append(sized(40), heading(2, 10), Block{Kind: BlockParagraph, Height: 30})
	pages := paginate(blocks, 60)

	require.Equal(t, []int{1, 2}, pageSizes(pages))
	assert.Equal(t, BlockHeading, pages[1].Blocks[0].Kind)
}

func TestPaginateKeepsHeadingRunTogether(t *testing.T) {
	blocks := append(sized(40), heading(2, 8), heading(3, 8), Block{Kind: BlockParagraph, Height: 20})
	pages := paginate(blocks, 60)

	require.Equal(t, []int{1, 3}, pageSizes(pages))
	assert.Equal(t, 2, pages[1].Blocks[0].Level)
	assert.Equal(t, 3, pages[1].Blocks[1].Level)
}

func TestPaginateHeadingBeforeOversizedBlockStays(t *testing.T) {
	blocks := append(sized(20), heading(2, 10), Block{Kind: BlockParagraph, Height: 100})
	pages := paginate(blocks, 60)

	require.Equal(t, []int{2, 1}, pageSizes(pages))
	assert.Equal(t, BlockHeading, pages[0].Blocks[1].Kind)
	assert.True(t, pages[1].Overflow)
}

func TestPaginateTrailingHeadingFits(t *testing.T) {
	blocks := append(sized(40), heading(2, 10))
	pages := paginate(blocks, 60)

	assert.Equal(t, []int{2}, pageSizes(pages))
}

func TestBuildModelLeavesNoHeadingLastOnPage(t *testing.T) {
	doc := BuildModel(longRecord(), Letter)

	for _, p := range doc.Pages[:len(doc.Pages)-1] {
		last := p.Blocks[len(p.Blocks)-1]
		assert.NotEqual(t, BlockHeading, last.Kind, "page %d ends with %q", p.Number, last.Text)
	}
}
