// Package decoration applies and removes visual decorations (highlight
// spans, note markers) on the rendered view so that the view always
// reflects the current annotation set.
//
// The reconciler keeps an explicit ownership list: every node it inserts
// is recorded under its annotation id, so removal is a precise unwrap of
// exactly those nodes rather than a sweep over the whole tree. Because
// views are ephemeral, ownership is tied to the view generation; a
// rebuilt tree simply starts from a clean slate.
package decoration

import (
	"ereader-be/internal/pkg/logger"
	"ereader-be/pkg/anchor"
	"ereader-be/pkg/annotations"
	"ereader-be/pkg/rendition"

	"github.com/google/uuid"
)

const notePreviewLen = 40

type ownedNode struct {
	block *rendition.Block
	node  *rendition.Node
}

// Reconciler owns every decoration node it inserts into a view.
type Reconciler struct {
	log        logger.ILogger
	generation int
	hasView    bool
	owned      map[uuid.UUID][]ownedNode
	onNote     func(noteID uuid.UUID)
}

func NewReconciler(log logger.ILogger) *Reconciler {
	return &Reconciler{
		log:   log,
		owned: make(map[uuid.UUID][]ownedNode),
	}
}

// OnNoteActivated registers the callback invoked when a note marker is
// activated (opened for viewing/editing).
func (r *Reconciler) OnNoteActivated(fn func(noteID uuid.UUID)) {
	r.onNote = fn
}

// Activate triggers the note behind an owned marker node. Unknown ids are
// ignored.
func (r *Reconciler) Activate(noteID uuid.UUID) {
	if r.onNote == nil {
		return
	}
	if _, ok := r.owned[noteID]; ok {
		r.onNote(noteID)
	}
}

// OwnedCount reports how many annotations currently have live decorations.
func (r *Reconciler) OwnedCount() int {
	return len(r.owned)
}

// Reconcile makes the view's decorations match the annotation set. It is
// idempotent: running it twice against an unchanged view and set yields
// the same decoration count. Individual annotations that fail to resolve
// are skipped and retried on the next pass; they never abort the rest.
func (r *Reconciler) Reconcile(view *rendition.View, set annotations.Set) {
	if view == nil {
		return
	}
	if r.hasView && view.Generation == r.generation {
		r.unwrapAll()
	} else {
		// The previous tree was torn down; its nodes are gone with it.
		r.owned = make(map[uuid.UUID][]ownedNode)
	}
	r.generation = view.Generation
	r.hasView = true

	for _, h := range set.Highlights {
		rng, err := anchor.Resolve(h.Anchor, view)
		if err != nil {
			r.logSkip("highlight", h.ID, err)
			continue
		}
		nodes := wrapRange(view, rng, func(text string) *rendition.Node {
			return &rendition.Node{
				Kind:         rendition.NodeHighlight,
				Text:         text,
				DecorationID: h.ID,
				Color:        h.Color,
			}
		})
		r.record(h.ID, nodes)
	}

	for _, n := range set.Notes {
		rng, err := anchor.Resolve(n.Anchor, view)
		if err != nil {
			r.logSkip("note", n.ID, err)
			continue
		}
		marker := &rendition.Node{
			Kind:         rendition.NodeNoteMarker,
			DecorationID: n.ID,
			Preview:      clip(n.Body, notePreviewLen),
		}
		nodes := insertMarker(view, rng, marker)
		r.record(n.ID, nodes)
	}
}

func (r *Reconciler) record(id uuid.UUID, nodes []ownedNode) {
	if len(nodes) == 0 {
		return
	}
	r.owned[id] = nodes
}

func (r *Reconciler) logSkip(kind string, id uuid.UUID, err error) {
	if r.log == nil {
		return
	}
	r.log.Debug("Reconciler", "annotation not resolvable this pass", map[string]interface{}{
		"kind":  kind,
		"id":    id.String(),
		"error": err.Error(),
	})
}

// unwrapAll removes every owned decoration, restoring the wrapped text
// into plain text nodes so no residue remains.
func (r *Reconciler) unwrapAll() {
	for id, nodes := range r.owned {
		for _, on := range nodes {
			unwrap(on.block, on.node)
		}
		delete(r.owned, id)
	}
}

func unwrap(block *rendition.Block, node *rendition.Node) {
	for i, n := range block.Nodes {
		if n != node {
			continue
		}
		if n.Kind == rendition.NodeNoteMarker || n.Text == "" {
			// Markers and zero-width stand-ins leave no text behind.
			block.Nodes = append(block.Nodes[:i], block.Nodes[i+1:]...)
		} else {
			block.Nodes[i] = &rendition.Node{Kind: rendition.NodeText, Text: n.Text}
		}
		return
	}
}

// wrapRange replaces the covered parts of the block's text nodes with
// decoration nodes built by mk. The range may span several text nodes
// when earlier splits fragmented the block. When the whole range is
// already claimed by other decorations (stacked highlights on one
// anchor) a zero-width node is inserted at the range start instead, so
// every live annotation still carries exactly one decoration and stays
// owned.
func wrapRange(view *rendition.View, rng anchor.Range, mk func(text string) *rendition.Node) []ownedNode {
	block := view.BlockByIndex(rng.Block)
	if block == nil || rng.Start >= rng.End {
		return nil
	}
	var owned []ownedNode
	out := make([]*rendition.Node, 0, len(block.Nodes)+2)
	pos := 0
	for _, n := range block.Nodes {
		if n.Kind == rendition.NodeNoteMarker {
			out = append(out, n)
			continue
		}
		runes := []rune(n.Text)
		nodeStart, nodeEnd := pos, pos+len(runes)
		pos = nodeEnd
		if n.Kind != rendition.NodeText || nodeEnd <= rng.Start || nodeStart >= rng.End {
			out = append(out, n)
			continue
		}
		lo, hi := rng.Start-nodeStart, rng.End-nodeStart
		if lo < 0 {
			lo = 0
		}
		if hi > len(runes) {
			hi = len(runes)
		}
		if lo > 0 {
			out = append(out, &rendition.Node{Kind: rendition.NodeText, Text: string(runes[:lo])})
		}
		deco := mk(string(runes[lo:hi]))
		out = append(out, deco)
		owned = append(owned, ownedNode{block: block, node: deco})
		if hi < len(runes) {
			out = append(out, &rendition.Node{Kind: rendition.NodeText, Text: string(runes[hi:])})
		}
	}
	block.Nodes = out
	if len(owned) == 0 {
		return insertNode(block, rng.Start, mk(""))
	}
	return owned
}

// insertMarker places a zero-width marker node at the collapsed end of
// the range.
func insertMarker(view *rendition.View, rng anchor.Range, marker *rendition.Node) []ownedNode {
	block := view.BlockByIndex(rng.Block)
	if block == nil {
		return nil
	}
	return insertNode(block, rng.End, marker)
}

// insertNode splices a zero-width node into the block at the given rune
// offset. Decoration nodes are never split; the insertion nudges to their
// edge.
func insertNode(block *rendition.Block, at int, node *rendition.Node) []ownedNode {
	out := make([]*rendition.Node, 0, len(block.Nodes)+2)
	pos := 0
	inserted := false
	for _, n := range block.Nodes {
		if n.Kind == rendition.NodeNoteMarker {
			out = append(out, n)
			continue
		}
		runes := []rune(n.Text)
		nodeStart, nodeEnd := pos, pos+len(runes)
		pos = nodeEnd
		if !inserted && at >= nodeStart && at <= nodeEnd {
			cut := at - nodeStart
			if n.Kind != rendition.NodeText && cut > 0 && cut < len(runes) {
				// Never split another decoration; nudge to its edge.
				cut = len(runes)
			}
			switch {
			case cut == 0:
				out = append(out, node, n)
			case cut == len(runes):
				out = append(out, n, node)
			default:
				out = append(out,
					&rendition.Node{Kind: rendition.NodeText, Text: string(runes[:cut])},
					node,
					&rendition.Node{Kind: rendition.NodeText, Text: string(runes[cut:])})
			}
			inserted = true
			continue
		}
		out = append(out, n)
	}
	if !inserted {
		out = append(out, node)
	}
	block.Nodes = out
	return []ownedNode{{block: block, node: node}}
}

func clip(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
