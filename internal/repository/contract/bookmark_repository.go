package contract

import (
	"context"

	"ereader-be/internal/entity"
	"ereader-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BookmarkRepository interface {
	Create(ctx context.Context, b *entity.Bookmark) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByDocumentIdUnscoped(ctx context.Context, documentId uuid.UUID) error // Hard delete on document removal
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Bookmark, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Bookmark, error)
}
