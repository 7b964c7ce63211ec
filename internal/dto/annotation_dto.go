package dto

import (
	"time"

	"github.com/google/uuid"
)

// SelectionRequest is the raw gesture from the viewer: a rune span inside
// one rendered block of the current layout.
type SelectionRequest struct {
	Block int `json:"block" validate:"min=0"`
	Start int `json:"start" validate:"min=0"`
	End   int `json:"end" validate:"required,gtfield=Start"`
}

type CreateHighlightRequest struct {
	Selection SelectionRequest `json:"selection" validate:"required"`
	Color     string           `json:"color" validate:"omitempty,hexcolor"`
}

type CreateHighlightResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreateNoteRequest struct {
	Selection SelectionRequest `json:"selection" validate:"required"`
	Body      string           `json:"body" validate:"required"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateNoteRequest struct {
	Id   uuid.UUID
	Body string `json:"body" validate:"required"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreateBookmarkRequest struct {
	Label string `json:"label" validate:"max=255"`
}

type CreateBookmarkResponse struct {
	Id uuid.UUID `json:"id"`
}

type DeleteAnnotationResponse struct {
	Id uuid.UUID `json:"id"`
}

type HighlightResponse struct {
	Id           uuid.UUID `json:"id"`
	Anchor       string    `json:"anchor"`
	SelectedText string    `json:"selected_text"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
}

type NoteResponse struct {
	Id           uuid.UUID  `json:"id"`
	Anchor       string     `json:"anchor"`
	SelectedText string     `json:"selected_text"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type BookmarkResponse struct {
	Id        uuid.UUID `json:"id"`
	Anchor    string    `json:"anchor"`
	Snippet   string    `json:"snippet"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

type ListAnnotationsResponse struct {
	Highlights []HighlightResponse `json:"highlights"`
	Notes      []NoteResponse      `json:"notes"`
	Bookmarks  []BookmarkResponse  `json:"bookmarks"`
}
