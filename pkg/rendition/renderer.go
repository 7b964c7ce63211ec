package rendition

import (
	"strings"
	"unicode"
)

const (
	// baseBlockBudget is the rune capacity of one block at 100% font scale.
	// Scaling the font shrinks the budget, which moves block boundaries --
	// the same reflow behavior a paginated viewer shows on font changes.
	baseBlockBudget = 280
	basePageBudget  = 1700

	minFontScale = 50
	maxFontScale = 200
)

// Location identifies where the renderer currently is.
type Location struct {
	Page   int
	Offset int
}

// RelocatedFunc is invoked after every navigation or reflow, once the new
// page has been materialized.
type RelocatedFunc func(Location)

type blockSpan struct {
	index  int
	offset int
	text   string
}

// Renderer paginates extracted plain text into a sequence of block-built
// pages and materializes the current page as a View. It owns the layout;
// callers only read and decorate the views it hands out.
type Renderer struct {
	text      []rune
	fontScale int

	pages      [][]blockSpan
	pageStarts []int
	page       int
	generation int
	dirty      bool

	current   *View
	relocated []RelocatedFunc
}

// New builds a renderer over the full extracted text of a document.
func New(text string) *Renderer {
	return &Renderer{
		text:      []rune(text),
		fontScale: 100,
		dirty:     true,
	}
}

// OnRelocated registers a relocation listener.
func (r *Renderer) OnRelocated(fn RelocatedFunc) {
	r.relocated = append(r.relocated, fn)
}

// DocLength returns the document length in runes.
func (r *Renderer) DocLength() int {
	return len(r.text)
}

// FontScale returns the active font scale in percent.
func (r *Renderer) FontScale() int {
	return r.fontScale
}

// SetFontScale reflows the layout for the given scale (clamped to 50-200%)
// and re-renders the page containing the previous location.
func (r *Renderer) SetFontScale(pct int) {
	if pct < minFontScale {
		pct = minFontScale
	}
	if pct > maxFontScale {
		pct = maxFontScale
	}
	if pct == r.fontScale {
		return
	}
	keep := r.Location().Offset
	r.fontScale = pct
	r.dirty = true
	r.layout()
	r.page = r.pageForOffset(keep)
	r.materialize()
	r.fireRelocated()
}

// Render lays out the document if needed and materializes the current
// page. The returned view is fresh: any decorations applied to an earlier
// view are gone.
func (r *Renderer) Render() *View {
	r.layout()
	r.materialize()
	return r.current
}

// CurrentView returns the last materialized view, rendering on first use.
func (r *Renderer) CurrentView() *View {
	if r.current == nil {
		return r.Render()
	}
	return r.current
}

// Location reports the current page and its starting offset.
func (r *Renderer) Location() Location {
	r.layout()
	return Location{Page: r.page, Offset: r.pageStarts[r.page]}
}

// LocationToPercentage converts a location to document percentage.
func (r *Renderer) LocationToPercentage(loc Location) float64 {
	if len(r.text) == 0 {
		return 0
	}
	pct := float64(loc.Offset) / float64(len(r.text)) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// NextPage advances one page. Returns false at the end of the document.
func (r *Renderer) NextPage() bool {
	r.layout()
	if r.page >= len(r.pages)-1 {
		return false
	}
	r.page++
	r.materialize()
	r.fireRelocated()
	return true
}

// PrevPage moves one page back. Returns false at the start.
func (r *Renderer) PrevPage() bool {
	r.layout()
	if r.page == 0 {
		return false
	}
	r.page--
	r.materialize()
	r.fireRelocated()
	return true
}

// DisplayOffset jumps to the page containing the absolute rune offset.
func (r *Renderer) DisplayOffset(off int) {
	r.layout()
	r.page = r.pageForOffset(off)
	r.materialize()
	r.fireRelocated()
}

func (r *Renderer) fireRelocated() {
	loc := r.Location()
	for _, fn := range r.relocated {
		fn(loc)
	}
}

func (r *Renderer) pageForOffset(off int) int {
	if off < 0 {
		off = 0
	}
	for i := len(r.pageStarts) - 1; i > 0; i-- {
		if off >= r.pageStarts[i] {
			return i
		}
	}
	return 0
}

func (r *Renderer) budget() (block, page int) {
	block = baseBlockBudget * 100 / r.fontScale
	page = basePageBudget * 100 / r.fontScale
	if block < 40 {
		block = 40
	}
	if page < block {
		page = block
	}
	return block, page
}

// layout splits the text into blocks and groups blocks into pages.
// Paragraphs longer than the block budget are chunked at word boundaries,
// so block boundaries (and with them structural anchors) depend on the
// font scale.
func (r *Renderer) layout() {
	if !r.dirty {
		return
	}
	blockBudget, pageBudget := r.budget()

	var blocks []blockSpan
	offset := 0
	index := 0
	for _, para := range splitParagraphs(string(r.text)) {
		for _, chunk := range chunkRunes(para.text, blockBudget) {
			blocks = append(blocks, blockSpan{
				index:  index,
				offset: offset + chunk.start,
				text:   chunk.text,
			})
			index++
		}
		offset += para.length
	}

	r.pages = nil
	r.pageStarts = nil
	pageLen := 0
	var page []blockSpan
	for _, b := range blocks {
		if pageLen > 0 && pageLen+len([]rune(b.text)) > pageBudget {
			r.pages = append(r.pages, page)
			r.pageStarts = append(r.pageStarts, page[0].offset)
			page = nil
			pageLen = 0
		}
		page = append(page, b)
		pageLen += len([]rune(b.text))
	}
	if len(page) > 0 {
		r.pages = append(r.pages, page)
		r.pageStarts = append(r.pageStarts, page[0].offset)
	}
	if len(r.pages) == 0 {
		r.pages = [][]blockSpan{{}}
		r.pageStarts = []int{0}
	}
	if r.page >= len(r.pages) {
		r.page = len(r.pages) - 1
	}
	r.generation++
	r.dirty = false
	r.current = nil
}

func (r *Renderer) materialize() {
	spans := r.pages[r.page]
	view := &View{
		Generation: r.generation,
		DocLength:  len(r.text),
		PageStart:  r.pageStarts[r.page],
	}
	end := r.pageStarts[r.page]
	for _, s := range spans {
		view.Blocks = append(view.Blocks, &Block{
			Index:  s.index,
			Offset: s.offset,
			Nodes:  []*Node{{Kind: NodeText, Text: s.text}},
		})
		end = s.offset + len([]rune(s.text))
	}
	view.PageEnd = end
	r.current = view
}

type paragraph struct {
	text   string
	length int // runes including trailing separator
}

func splitParagraphs(text string) []paragraph {
	var out []paragraph
	rest := text
	for len(rest) > 0 {
		idx := strings.Index(rest, "\n\n")
		if idx < 0 {
			out = append(out, paragraph{text: rest, length: len([]rune(rest))})
			break
		}
		seg := rest[:idx]
		sep := 2
		for idx+sep < len(rest) && rest[idx+sep] == '\n' {
			sep++
		}
		out = append(out, paragraph{text: seg, length: len([]rune(seg)) + sep})
		rest = rest[idx+sep:]
	}
	return out
}

type chunk struct {
	start int // rune offset within the paragraph
	text  string
}

// chunkRunes slices a paragraph into budget-sized pieces, preferring to
// break after whitespace so words stay intact.
func chunkRunes(text string, budget int) []chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var out []chunk
	start := 0
	for start < len(runes) {
		end := start + budget
		if end >= len(runes) {
			end = len(runes)
		} else {
			brk := end
			for brk > start && !unicode.IsSpace(runes[brk-1]) {
				brk--
			}
			if brk > start {
				end = brk
			}
		}
		out = append(out, chunk{start: start, text: string(runes[start:end])})
		start = end
	}
	return out
}
