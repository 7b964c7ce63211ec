package dto

import (
	"github.com/google/uuid"
)

type OpenDocumentResponse struct {
	SessionId  string       `json:"session_id"`
	DocumentId uuid.UUID    `json:"document_id"`
	View       ViewResponse `json:"view"`
}

// NodeResponse is one decorated fragment of a rendered block.
type NodeResponse struct {
	Kind         string    `json:"kind"`
	Text         string    `json:"text,omitempty"`
	DecorationId uuid.UUID `json:"decoration_id,omitempty"`
	Color        string    `json:"color,omitempty"`
	Preview      string    `json:"preview,omitempty"`
}

type BlockResponse struct {
	Index  int            `json:"index"`
	Offset int            `json:"offset"`
	Nodes  []NodeResponse `json:"nodes"`
}

type ViewResponse struct {
	Generation int             `json:"generation"`
	PageStart  int             `json:"page_start"`
	PageEnd    int             `json:"page_end"`
	DocLength  int             `json:"doc_length"`
	Blocks     []BlockResponse `json:"blocks"`
}

type NavigateRequest struct {
	// Direction is "next" or "prev"; alternatively Offset or Percentage
	// targets an absolute position.
	Direction  string   `json:"direction" validate:"omitempty,oneof=next prev"`
	Offset     *int     `json:"offset" validate:"omitempty,min=0"`
	Percentage *float64 `json:"percentage" validate:"omitempty,min=0,max=100"`
}

type FontScaleRequest struct {
	Scale int `json:"scale" validate:"required,min=50,max=200"`
}

type ProgressResponse struct {
	CurrentPosition      int     `json:"current_position"`
	TotalLength          int     `json:"total_length"`
	Percentage           float64 `json:"percentage"`
	TimeReadMinutes      float64 `json:"time_read_minutes"`
	TimeRemainingMinutes float64 `json:"time_remaining_minutes"`
}

type SpeechRequest struct {
	// Action is one of play, pause, resume, stop, seek.
	Action string `json:"action" validate:"required,oneof=play pause resume stop seek"`
	Offset *int   `json:"offset" validate:"omitempty,min=0"`
}

type SpeechResponse struct {
	State    string `json:"state"`
	Position int    `json:"position"`
}

type VoiceSettingsRequest struct {
	Voice  string  `json:"voice" validate:"max=64"`
	Rate   float64 `json:"rate" validate:"omitempty,min=0.5,max=3"`
	Pitch  float64 `json:"pitch" validate:"omitempty,min=0.5,max=2"`
	Volume float64 `json:"volume" validate:"omitempty,min=0,max=1"`
}

type ReadingStateResponse struct {
	DocumentId      uuid.UUID            `json:"document_id"`
	LastPosition    int                  `json:"last_position"`
	Percentage      float64              `json:"percentage"`
	TimeReadSeconds int                  `json:"time_read_seconds"`
	FontScale       int                  `json:"font_scale"`
	Voice           VoiceSettingsRequest `json:"voice"`
}
