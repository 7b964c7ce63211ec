package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_UPLOADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event codes emitted by the reader backend.
const (
	TypeDocumentUploaded  = "DOCUMENT_UPLOADED"
	TypeDocumentDeleted   = "DOCUMENT_DELETED"
	TypeSessionOpened     = "SESSION_OPENED"
	TypeAnnotationCreated = "ANNOTATION_CREATED"
	TypeAnnotationDeleted = "ANNOTATION_DELETED"
	TypeProgressSaved     = "PROGRESS_SAVED"
)

func NewDocumentUploaded(documentID uuid.UUID, title, format string, wordCount int) Event {
	return BaseEvent{
		Type: TypeDocumentUploaded,
		Data: map[string]interface{}{
			"document_id": documentID,
			"title":       title,
			"format":      format,
			"word_count":  wordCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentDeleted(documentID uuid.UUID) Event {
	return BaseEvent{
		Type:       TypeDocumentDeleted,
		Data:       map[string]interface{}{"document_id": documentID},
		OccurredAt: time.Now(),
	}
}

func NewSessionOpened(sessionID string, documentID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSessionOpened,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"document_id": documentID,
		},
		OccurredAt: time.Now(),
	}
}

func NewAnnotationCreated(documentID uuid.UUID, kind string, annotationID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeAnnotationCreated,
		Data: map[string]interface{}{
			"document_id":   documentID,
			"kind":          kind,
			"annotation_id": annotationID,
		},
		OccurredAt: time.Now(),
	}
}

func NewProgressSaved(documentID uuid.UUID, position int, percentage float64) Event {
	return BaseEvent{
		Type: TypeProgressSaved,
		Data: map[string]interface{}{
			"document_id": documentID,
			"position":    position,
			"percentage":  percentage,
		},
		OccurredAt: time.Now(),
	}
}
