package contract

import (
	"context"

	"ereader-be/internal/entity"
	"ereader-be/internal/repository/specification"

	"github.com/google/uuid"
)

type HighlightRepository interface {
	Create(ctx context.Context, h *entity.Highlight) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByDocumentIdUnscoped(ctx context.Context, documentId uuid.UUID) error // Hard delete on document removal
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Highlight, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Highlight, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
