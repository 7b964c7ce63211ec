package contract

import (
	"context"

	"ereader-be/internal/entity"

	"github.com/google/uuid"
)

type ReadingStateRepository interface {
	// Upsert writes the one resume row a document has, creating it on
	// first save.
	Upsert(ctx context.Context, state *entity.ReadingState) error
	FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.ReadingState, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
