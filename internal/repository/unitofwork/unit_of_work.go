package unitofwork

import (
	"context"

	"ereader-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	HighlightRepository() contract.HighlightRepository
	NoteRepository() contract.NoteRepository
	BookmarkRepository() contract.BookmarkRepository
	ReadingStateRepository() contract.ReadingStateRepository
}
