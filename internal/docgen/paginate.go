package docgen

// paginate places blocks on pages of the given content height. A block that
// does not fit starts a new page. A heading moves to the next page together
// with the content it introduces rather than end a page. A block taller than
// a whole page is placed on a page of its own and marks it as overflowing.
// Every block is placed exactly once, so the loop terminates.
func paginate(blocks []Block, pageHeight float64) []Page {
	pages := []Page{{Number: 1}}
	for i, b := range blocks {
		cur := &pages[len(pages)-1]
		if len(cur.Blocks) > 0 && cur.Used+keepHeight(blocks, i, pageHeight) > pageHeight {
			pages = append(pages, Page{Number: len(pages) + 1})
			cur = &pages[len(pages)-1]
		}
		cur.Blocks = append(cur.Blocks, b)
		cur.Used += b.Height
		if cur.Used > pageHeight {
			cur.Overflow = true
		}
	}
	return pages
}

// keepHeight is the space blocks[i] needs on the current page: for a heading,
// itself plus any headings directly below it and the first content block.
// A run that would not fit on an empty page is not kept together.
func keepHeight(blocks []Block, i int, pageHeight float64) float64 {
	if blocks[i].Kind != BlockHeading {
		return blocks[i].Height
	}

	h := 0.0
	for j := i; j < len(blocks); j++ {
		h += blocks[j].Height
		if blocks[j].Kind != BlockHeading {
			break
		}
	}
	if h > pageHeight {
		return blocks[i].Height
	}
	return h
}
