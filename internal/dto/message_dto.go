package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ops for PersistAnnotationMessage.
const (
	PersistOpSave   = "save"
	PersistOpDelete = "delete"
)

// PersistAnnotationMessage is the payload pushed onto the internal queue
// whenever an annotation changes in a live reading session. The consumer
// applies it to the database; the session never waits for the write.
type PersistAnnotationMessage struct {
	Kind       string          `json:"kind"` // highlight | note | bookmark
	Op         string          `json:"op"`   // save | delete
	DocumentId uuid.UUID       `json:"document_id"`
	Id         uuid.UUID       `json:"id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type HighlightPayload struct {
	Anchor       string    `json:"anchor"`
	SelectedText string    `json:"selected_text"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotePayload struct {
	Anchor       string     `json:"anchor"`
	SelectedText string     `json:"selected_text"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type BookmarkPayload struct {
	Anchor    string    `json:"anchor"`
	Snippet   string    `json:"snippet"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
