// Package selection turns raw text-selection gestures from the rendered
// view into anchored capture candidates for highlight and note creation.
package selection

import (
	"strings"

	"ereader-be/pkg/anchor"
	"ereader-be/pkg/rendition"
)

// Selection is a raw gesture as reported by the viewer: a span of runes
// inside one rendered block.
type Selection struct {
	Block int
	Start int
	End   int
}

// Capture is a validated selection: the selected text plus a durable
// anchor for it.
type Capture struct {
	Text   string
	Anchor anchor.Anchor
}

// FromView validates a selection against the current view and anchors it.
// Returns nil for selections that are empty, whitespace-only, out of
// bounds, or inside a block that is not currently rendered.
func FromView(view *rendition.View, sel Selection) *Capture {
	if view == nil {
		return nil
	}
	blk := view.BlockByIndex(sel.Block)
	if blk == nil {
		return nil
	}
	runes := []rune(blk.Text())
	if sel.Start < 0 || sel.End > len(runes) || sel.Start >= sel.End {
		return nil
	}
	text := string(runes[sel.Start:sel.End])
	if strings.TrimSpace(text) == "" {
		return nil
	}
	a, err := anchor.Encode(view, anchor.Range{Block: sel.Block, Start: sel.Start, End: sel.End})
	if err != nil {
		return nil
	}
	return &Capture{Text: text, Anchor: a}
}
