package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ReadingState struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	LastPosition    int            `gorm:"not null;default:0"`
	Percentage      float64        `gorm:"not null;default:0"`
	TimeReadSeconds int            `gorm:"not null;default:0"`
	FontScale       int            `gorm:"not null;default:100"`
	Voice           datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (ReadingState) TableName() string {
	return "reading_states"
}
