package entity

import (
	"time"

	"github.com/google/uuid"
)

type Highlight struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId   uuid.UUID `gorm:"type:uuid;index"`
	Anchor       string
	SelectedText string
	Color        string
	CreatedAt    time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

type Note struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId   uuid.UUID `gorm:"type:uuid;index"`
	Anchor       string
	SelectedText string
	Body         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}

type Bookmark struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentId uuid.UUID `gorm:"type:uuid;index"`
	Anchor     string
	Snippet    string
	Label      string
	CreatedAt  time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
