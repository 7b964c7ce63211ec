package specification

import (
	"gorm.io/gorm"
)

type ByFormat struct {
	Format string
}

func (s ByFormat) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("format = ?", s.Format)
}

type TitleContains struct {
	Needle string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Needle+"%")
}

// WithoutContent trims the full text column from list queries.
type WithoutContent struct{}

func (s WithoutContent) Apply(db *gorm.DB) *gorm.DB {
	return db.Omit("content")
}
