package decoration

import (
	"context"
	"testing"

	"ereader-be/pkg/anchor"
	"ereader-be/pkg/annotations"
	"ereader-be/pkg/rendition"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countDecorations(view *rendition.View) (highlights, markers int) {
	for _, b := range view.Blocks {
		for _, n := range b.Nodes {
			switch n.Kind {
			case rendition.NodeHighlight:
				highlights++
			case rendition.NodeNoteMarker:
				markers++
			}
		}
	}
	return highlights, markers
}

func fixture(t *testing.T) (*rendition.Renderer, *rendition.View, *annotations.Store) {
	t.Helper()
	r := rendition.New("One paragraph of sample text for reconciliation checks.\n\nSecond paragraph carrying more anchored content for the suite.")
	view := r.Render()
	store := annotations.NewStore(nil)
	store.SetDocument(uuid.New(), annotations.Set{})
	return r, view, store
}

func mustAnchor(t *testing.T, view *rendition.View, rng anchor.Range) anchor.Anchor {
	t.Helper()
	a, err := anchor.Encode(view, rng)
	require.NoError(t, err)
	return a
}

func TestReconcileIsIdempotent(t *testing.T) {
	_, view, store := fixture(t)
	ctx := context.Background()

	store.AddHighlight(ctx, "paragraph of sample", mustAnchor(t, view, anchor.Range{Block: 0, Start: 4, End: 23}), "")
	store.AddNote(ctx, "anchored content", "remember this", mustAnchor(t, view, anchor.Range{Block: 1, Start: 25, End: 41}))

	rec := NewReconciler(nil)
	rec.Reconcile(view, store.List())
	h1, m1 := countDecorations(view)
	assert.Equal(t, 1, h1)
	assert.Equal(t, 1, m1)

	// A redundant second pass against the same tree and set must not
	// change the decoration count.
	rec.Reconcile(view, store.List())
	h2, m2 := countDecorations(view)
	assert.Equal(t, h1, h2)
	assert.Equal(t, m1, m2)

	// The visible text must be unchanged by decorating.
	assert.Contains(t, view.Blocks[0].Text(), "paragraph of sample text")
}

func TestReconcileSkipsUnresolvableAnnotations(t *testing.T) {
	_, view, store := fixture(t)
	ctx := context.Background()

	store.AddHighlight(ctx, "ghost", anchor.Anchor("b99.0-5~not in this document"), "")
	store.AddHighlight(ctx, "paragraph", mustAnchor(t, view, anchor.Range{Block: 0, Start: 4, End: 13}), "")

	rec := NewReconciler(nil)
	rec.Reconcile(view, store.List())

	h, _ := countDecorations(view)
	assert.Equal(t, 1, h, "the resolvable highlight must still be applied")
	assert.Equal(t, 1, rec.OwnedCount())
}

func TestDeleteNoteRemovesExactlyOneDecoration(t *testing.T) {
	_, view, store := fixture(t)
	ctx := context.Background()

	shared := mustAnchor(t, view, anchor.Range{Block: 0, Start: 4, End: 23})
	store.AddHighlight(ctx, "paragraph of sample", shared, "#fff176")
	store.AddHighlight(ctx, "paragraph of sample", shared, "#aed581")
	note := store.AddNote(ctx, "paragraph of sample", "note body", shared)

	rec := NewReconciler(nil)
	rec.Reconcile(view, store.List())
	_, m1 := countDecorations(view)
	require.Equal(t, 1, m1)

	store.Remove(ctx, annotations.KindNote, note.ID)
	rec.Reconcile(view, store.List())

	h, m := countDecorations(view)
	assert.Equal(t, 0, m, "note marker gone")
	assert.Equal(t, 2, h, "both highlights at the same anchor survive")
	assert.Equal(t, 2, rec.OwnedCount())
}

func TestStackedHighlightsEachKeepADecoration(t *testing.T) {
	_, view, store := fixture(t)
	ctx := context.Background()

	shared := mustAnchor(t, view, anchor.Range{Block: 0, Start: 4, End: 23})
	first := store.AddHighlight(ctx, "paragraph of sample", shared, "#fff176")
	store.AddHighlight(ctx, "paragraph of sample", shared, "#aed581")

	rec := NewReconciler(nil)
	rec.Reconcile(view, store.List())

	h, _ := countDecorations(view)
	assert.Equal(t, 2, h, "each live highlight carries a decoration")
	assert.Equal(t, 2, rec.OwnedCount())
	assert.Contains(t, view.Blocks[0].Text(), "paragraph of sample text")

	// Still two after a redundant pass.
	rec.Reconcile(view, store.List())
	h, _ = countDecorations(view)
	assert.Equal(t, 2, h)

	// Removing one leaves exactly the other.
	store.Remove(ctx, annotations.KindHighlight, first.ID)
	rec.Reconcile(view, store.List())
	h, _ = countDecorations(view)
	assert.Equal(t, 1, h)
	assert.Equal(t, 1, rec.OwnedCount())
	assert.Contains(t, view.Blocks[0].Text(), "paragraph of sample text")
}

func TestReconcileAfterReflowStartsClean(t *testing.T) {
	r, view, store := fixture(t)
	ctx := context.Background()

	store.AddHighlight(ctx, "Second paragraph carrying", mustAnchor(t, view, anchor.Range{Block: 1, Start: 0, End: 25}), "")

	rec := NewReconciler(nil)
	rec.Reconcile(view, store.List())

	r.SetFontScale(150)
	fresh := r.Render()
	rec.Reconcile(fresh, store.List())

	h, _ := countDecorations(fresh)
	assert.Equal(t, 1, h, "decoration reapplied exactly once on the rebuilt tree")
}

func TestNoteActivation(t *testing.T) {
	_, view, store := fixture(t)
	ctx := context.Background()

	note := store.AddNote(ctx, "sample text", "open me", mustAnchor(t, view, anchor.Range{Block: 0, Start: 17, End: 28}))

	rec := NewReconciler(nil)
	var opened []uuid.UUID
	rec.OnNoteActivated(func(id uuid.UUID) { opened = append(opened, id) })
	rec.Reconcile(view, store.List())

	rec.Activate(note.ID)
	rec.Activate(uuid.New()) // unknown id is ignored

	require.Len(t, opened, 1)
	assert.Equal(t, note.ID, opened[0])
}
