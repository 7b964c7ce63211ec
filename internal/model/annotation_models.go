package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Highlight struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Anchor       string         `gorm:"type:varchar(128);not null"`
	SelectedText string         `gorm:"type:varchar(255)"`
	Color        string         `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Highlight) TableName() string {
	return "highlights"
}

type Note struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Anchor       string         `gorm:"type:varchar(128);not null"`
	SelectedText string         `gorm:"type:varchar(255)"`
	Body         string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

type Bookmark struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Anchor     string         `gorm:"type:varchar(128);not null"`
	Snippet    string         `gorm:"type:varchar(255)"`
	Label      string         `gorm:"type:varchar(255)"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
