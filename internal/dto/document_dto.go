package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	WordCount int       `json:"word_count"`
	CharCount int       `json:"char_count"`
}

type DocumentSummary struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Format     string     `json:"format"`
	WordCount  int        `json:"word_count"`
	Percentage float64    `json:"percentage"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	Content   string    `json:"content"`
	WordCount int       `json:"word_count"`
	CharCount int       `json:"char_count"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentContentResponse struct {
	Id      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

type DeleteDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}
