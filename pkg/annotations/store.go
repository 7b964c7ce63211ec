// Package annotations owns the in-memory annotation sets of the active
// document: highlights, notes and bookmarks. It has no rendering
// knowledge; anchors are carried as opaque strings and interpreted by the
// anchor codec. Mutations update the observable state synchronously and
// hand the change to an injected Persister, whose writes may complete
// asynchronously -- a persistence failure never rolls back the in-memory
// state, it only means the change might not survive a restart.
package annotations

import (
	"context"
	"time"

	"ereader-be/pkg/anchor"

	"github.com/google/uuid"
)

// Kind discriminates the annotation collections.
type Kind string

const (
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
	KindBookmark  Kind = "bookmark"
)

const (
	maxHighlightSnippet = 200
	maxNoteSnippet      = 100
	maxBookmarkSnippet  = 100

	// DefaultHighlightColor matches the viewer's yellow marker.
	DefaultHighlightColor = "#ffeb3b"
)

type Highlight struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Anchor     anchor.Anchor
	Text       string
	Color      string
	CreatedAt  time.Time
}

type Note struct {
	ID           uuid.UUID
	DocumentID   uuid.UUID
	Anchor       anchor.Anchor
	SelectedText string
	Body         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type Bookmark struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Anchor     anchor.Anchor
	Text       string
	Label      string
	CreatedAt  time.Time
}

// Set is one document's annotation collections.
type Set struct {
	Highlights []Highlight
	Notes      []Note
	Bookmarks  []Bookmark
}

// Persister receives every mutation after it is applied in memory.
// Implementations are free to write asynchronously; errors are handled by
// the implementation (logged, surfaced as a warning), never by the store.
type Persister interface {
	SaveHighlight(ctx context.Context, h Highlight)
	SaveNote(ctx context.Context, n Note)
	SaveBookmark(ctx context.Context, b Bookmark)
	Remove(ctx context.Context, documentID uuid.UUID, kind Kind, id uuid.UUID)
}

// Store holds the annotation sets of the currently active document.
// It must be confined to the session's event loop; there is no internal
// locking.
type Store struct {
	documentID uuid.UUID
	set        Set
	persister  Persister
	now        func() time.Time
}

func NewStore(persister Persister) *Store {
	return &Store{
		persister: persister,
		now:       time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// SetDocument swaps the active document and replaces the in-memory view
// with the given snapshot. Annotations from the previous document are
// dropped, never merged.
func (s *Store) SetDocument(documentID uuid.UUID, snapshot Set) {
	s.documentID = documentID
	s.set = snapshot
}

// DocumentID returns the active document, or uuid.Nil when none is set.
func (s *Store) DocumentID() uuid.UUID {
	return s.documentID
}

// List returns the current annotation sets. The returned slices are the
// store's own; callers must not mutate them.
func (s *Store) List() Set {
	return s.set
}

// AddHighlight records an immutable highlight. The snippet is bounded.
func (s *Store) AddHighlight(ctx context.Context, text string, a anchor.Anchor, color string) Highlight {
	if color == "" {
		color = DefaultHighlightColor
	}
	h := Highlight{
		ID:         uuid.New(),
		DocumentID: s.documentID,
		Anchor:     a,
		Text:       clip(text, maxHighlightSnippet),
		Color:      color,
		CreatedAt:  s.now(),
	}
	s.set.Highlights = append(s.set.Highlights, h)
	if s.persister != nil {
		s.persister.SaveHighlight(ctx, h)
	}
	return h
}

// AddNote records a note. The anchor and the selected-text snippet are
// fixed at creation; only the body may change afterwards.
func (s *Store) AddNote(ctx context.Context, selectedText, body string, a anchor.Anchor) Note {
	n := Note{
		ID:           uuid.New(),
		DocumentID:   s.documentID,
		Anchor:       a,
		SelectedText: clip(selectedText, maxNoteSnippet),
		Body:         body,
		CreatedAt:    s.now(),
	}
	s.set.Notes = append(s.set.Notes, n)
	if s.persister != nil {
		s.persister.SaveNote(ctx, n)
	}
	return n
}

// UpdateNote replaces a note's body. Returns false for an unknown id.
func (s *Store) UpdateNote(ctx context.Context, id uuid.UUID, body string) bool {
	for i := range s.set.Notes {
		if s.set.Notes[i].ID != id {
			continue
		}
		now := s.now()
		s.set.Notes[i].Body = body
		s.set.Notes[i].UpdatedAt = &now
		if s.persister != nil {
			s.persister.SaveNote(ctx, s.set.Notes[i])
		}
		return true
	}
	return false
}

// AddBookmark records a bookmark with an optional label.
func (s *Store) AddBookmark(ctx context.Context, text, label string, a anchor.Anchor) Bookmark {
	b := Bookmark{
		ID:         uuid.New(),
		DocumentID: s.documentID,
		Anchor:     a,
		Text:       clip(text, maxBookmarkSnippet),
		Label:      label,
		CreatedAt:  s.now(),
	}
	s.set.Bookmarks = append(s.set.Bookmarks, b)
	if s.persister != nil {
		s.persister.SaveBookmark(ctx, b)
	}
	return b
}

// Remove deletes one annotation by kind and id. Returns false when the
// annotation is not part of the active set.
func (s *Store) Remove(ctx context.Context, kind Kind, id uuid.UUID) bool {
	removed := false
	switch kind {
	case KindHighlight:
		s.set.Highlights, removed = deleteByID(s.set.Highlights, id, func(h Highlight) uuid.UUID { return h.ID })
	case KindNote:
		s.set.Notes, removed = deleteByID(s.set.Notes, id, func(n Note) uuid.UUID { return n.ID })
	case KindBookmark:
		s.set.Bookmarks, removed = deleteByID(s.set.Bookmarks, id, func(b Bookmark) uuid.UUID { return b.ID })
	}
	if removed && s.persister != nil {
		s.persister.Remove(ctx, s.documentID, kind, id)
	}
	return removed
}

func deleteByID[T any](items []T, id uuid.UUID, key func(T) uuid.UUID) ([]T, bool) {
	for i, item := range items {
		if key(item) == id {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

func clip(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
