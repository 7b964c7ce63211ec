package entity

import (
	"time"

	"github.com/google/uuid"
)

type VoiceSettings struct {
	Voice  string  `json:"voice"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// ReadingState is the per-document resume point. One row per document.
type ReadingState struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	LastPosition    int
	Percentage      float64
	TimeReadSeconds int
	FontScale       int
	Voice           VoiceSettings
	UpdatedAt       time.Time
}
