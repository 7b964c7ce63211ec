package rendition

import (
	"strings"

	"github.com/google/uuid"
)

// NodeKind discriminates the node types that can appear inside a block.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeHighlight
	NodeNoteMarker
)

// Node is a leaf of the render tree. Text nodes carry document content.
// Highlight nodes wrap a run of text with a color; note markers are
// zero-width and carry a preview of the note body.
type Node struct {
	Kind         NodeKind
	Text         string
	DecorationID uuid.UUID
	Color        string
	Preview      string
}

// Block is one visual block (a paragraph chunk) of the current page.
// Index and Offset are layout-wide: Index is the block's position in the
// full document layout, Offset the absolute rune offset of its first
// character. Both are only valid for the layout generation that produced
// the view.
type Block struct {
	Index  int
	Offset int
	Nodes  []*Node
}

// Text reassembles the block's content. Note markers contribute nothing.
func (b *Block) Text() string {
	var sb strings.Builder
	for _, n := range b.Nodes {
		if n.Kind == NodeNoteMarker {
			continue
		}
		sb.WriteString(n.Text)
	}
	return sb.String()
}

// Len returns the block's content length in runes.
func (b *Block) Len() int {
	total := 0
	for _, n := range b.Nodes {
		if n.Kind == NodeNoteMarker {
			continue
		}
		total += len([]rune(n.Text))
	}
	return total
}

// View is the ephemeral render tree for the currently displayed page.
// It is rebuilt on every navigation or reflow; holders must not cache it
// across render passes. Generation changes whenever the underlying layout
// is rebuilt, so stale decoration bookkeeping can be detected.
type View struct {
	Generation int
	Blocks     []*Block
	PageStart  int
	PageEnd    int
	DocLength  int
}

// BlockByIndex finds a block of the view by its layout-wide index.
// Returns nil when the block is not part of the rendered page.
func (v *View) BlockByIndex(idx int) *Block {
	for _, b := range v.Blocks {
		if b.Index == idx {
			return b
		}
	}
	return nil
}

// Text returns the visible text of the whole view.
func (v *View) Text() string {
	parts := make([]string, 0, len(v.Blocks))
	for _, b := range v.Blocks {
		parts = append(parts, b.Text())
	}
	return strings.Join(parts, "\n")
}
