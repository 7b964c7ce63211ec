package annotations

import (
	"context"
	"strings"
	"testing"

	"ereader-be/pkg/anchor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	saves   []string
	removes []string
}

func (p *recordingPersister) SaveHighlight(_ context.Context, h Highlight) {
	p.saves = append(p.saves, "highlight:"+h.ID.String())
}

func (p *recordingPersister) SaveNote(_ context.Context, n Note) {
	p.saves = append(p.saves, "note:"+n.ID.String())
}

func (p *recordingPersister) SaveBookmark(_ context.Context, b Bookmark) {
	p.saves = append(p.saves, "bookmark:"+b.ID.String())
}

func (p *recordingPersister) Remove(_ context.Context, _ uuid.UUID, kind Kind, id uuid.UUID) {
	p.removes = append(p.removes, string(kind)+":"+id.String())
}

func TestAddHighlightClipsSnippetAndDefaultsColor(t *testing.T) {
	p := &recordingPersister{}
	s := NewStore(p)
	s.SetDocument(uuid.New(), Set{})

	long := strings.Repeat("x", 500)
	h := s.AddHighlight(context.Background(), long, anchor.Anchor("b0.0-5~xxxxx"), "")

	assert.Equal(t, DefaultHighlightColor, h.Color)
	assert.Len(t, []rune(h.Text), maxHighlightSnippet+3) // clipped plus ellipsis
	assert.True(t, strings.HasSuffix(h.Text, "..."))
	assert.Len(t, p.saves, 1)
}

func TestUpdateNoteOnlyTouchesBody(t *testing.T) {
	s := NewStore(nil)
	s.SetDocument(uuid.New(), Set{})

	n := s.AddNote(context.Background(), "selected words", "first draft", anchor.Anchor("b1.0-14~selected words"))
	require.Nil(t, n.UpdatedAt)

	ok := s.UpdateNote(context.Background(), n.ID, "second draft")
	require.True(t, ok)

	got := s.List().Notes[0]
	assert.Equal(t, "second draft", got.Body)
	assert.Equal(t, n.Anchor, got.Anchor)
	assert.Equal(t, n.SelectedText, got.SelectedText)
	assert.NotNil(t, got.UpdatedAt)

	assert.False(t, s.UpdateNote(context.Background(), uuid.New(), "nope"))
}

func TestRemoveDeletesExactlyOne(t *testing.T) {
	p := &recordingPersister{}
	s := NewStore(p)
	s.SetDocument(uuid.New(), Set{})

	a := anchor.Anchor("b0.0-10~shared spot")
	s.AddHighlight(context.Background(), "shared spot one", a, "#fff176")
	s.AddHighlight(context.Background(), "shared spot two", a, "#aed581")
	n := s.AddNote(context.Background(), "shared spot", "note at the same anchor", a)

	ok := s.Remove(context.Background(), KindNote, n.ID)
	require.True(t, ok)

	set := s.List()
	assert.Len(t, set.Notes, 0)
	assert.Len(t, set.Highlights, 2, "highlights at the same anchor must survive")
	assert.Contains(t, p.removes, "note:"+n.ID.String())

	assert.False(t, s.Remove(context.Background(), KindNote, n.ID), "second delete is a no-op")
}

func TestSetDocumentDropsPreviousSet(t *testing.T) {
	s := NewStore(nil)
	docA := uuid.New()
	s.SetDocument(docA, Set{})
	s.AddHighlight(context.Background(), "from doc A", anchor.Anchor("b0.0-5~from "), "")

	docB := uuid.New()
	s.SetDocument(docB, Set{Bookmarks: []Bookmark{{ID: uuid.New(), DocumentID: docB}}})

	set := s.List()
	assert.Empty(t, set.Highlights, "no cross-document leakage")
	assert.Len(t, set.Bookmarks, 1)
	assert.Equal(t, docB, s.DocumentID())
}
