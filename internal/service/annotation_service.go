package service

import (
	"context"

	"ereader-be/internal/dto"
	"ereader-be/internal/repository/specification"
	"ereader-be/internal/repository/unitofwork"
	"ereader-be/pkg/anchor"
	"ereader-be/pkg/annotations"

	"github.com/google/uuid"
)

type IAnnotationService interface {
	// List returns the stored annotations of a document for clients that
	// browse without an open reading session.
	List(ctx context.Context, documentId uuid.UUID) (*dto.ListAnnotationsResponse, error)

	// LoadSet builds the in-memory snapshot a fresh session starts from.
	LoadSet(ctx context.Context, documentId uuid.UUID) (annotations.Set, error)
}

type annotationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAnnotationService(uowFactory unitofwork.RepositoryFactory) IAnnotationService {
	return &annotationService{
		uowFactory: uowFactory,
	}
}

func (c *annotationService) List(ctx context.Context, documentId uuid.UUID) (*dto.ListAnnotationsResponse, error) {
	set, err := c.LoadSet(ctx, documentId)
	if err != nil {
		return nil, err
	}

	res := &dto.ListAnnotationsResponse{
		Highlights: make([]dto.HighlightResponse, 0, len(set.Highlights)),
		Notes:      make([]dto.NoteResponse, 0, len(set.Notes)),
		Bookmarks:  make([]dto.BookmarkResponse, 0, len(set.Bookmarks)),
	}

	for _, h := range set.Highlights {
		res.Highlights = append(res.Highlights, dto.HighlightResponse{
			Id:           h.ID,
			Anchor:       string(h.Anchor),
			SelectedText: h.Text,
			Color:        h.Color,
			CreatedAt:    h.CreatedAt,
		})
	}
	for _, n := range set.Notes {
		res.Notes = append(res.Notes, dto.NoteResponse{
			Id:           n.ID,
			Anchor:       string(n.Anchor),
			SelectedText: n.SelectedText,
			Body:         n.Body,
			CreatedAt:    n.CreatedAt,
			UpdatedAt:    n.UpdatedAt,
		})
	}
	for _, b := range set.Bookmarks {
		res.Bookmarks = append(res.Bookmarks, dto.BookmarkResponse{
			Id:        b.ID,
			Anchor:    string(b.Anchor),
			Snippet:   b.Text,
			Label:     b.Label,
			CreatedAt: b.CreatedAt,
		})
	}

	return res, nil
}

func (c *annotationService) LoadSet(ctx context.Context, documentId uuid.UUID) (annotations.Set, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	byDoc := specification.ByDocumentID{DocumentID: documentId}
	order := specification.OrderBy{Field: "created_at"}

	var set annotations.Set

	highlights, err := uow.HighlightRepository().FindAll(ctx, byDoc, order)
	if err != nil {
		return set, err
	}
	for _, h := range highlights {
		set.Highlights = append(set.Highlights, annotations.Highlight{
			ID:         h.Id,
			DocumentID: h.DocumentId,
			Anchor:     anchor.Anchor(h.Anchor),
			Text:       h.SelectedText,
			Color:      h.Color,
			CreatedAt:  h.CreatedAt,
		})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, byDoc, order)
	if err != nil {
		return set, err
	}
	for _, n := range notes {
		set.Notes = append(set.Notes, annotations.Note{
			ID:           n.Id,
			DocumentID:   n.DocumentId,
			Anchor:       anchor.Anchor(n.Anchor),
			SelectedText: n.SelectedText,
			Body:         n.Body,
			CreatedAt:    n.CreatedAt,
			UpdatedAt:    n.UpdatedAt,
		})
	}

	bookmarks, err := uow.BookmarkRepository().FindAll(ctx, byDoc, order)
	if err != nil {
		return set, err
	}
	for _, b := range bookmarks {
		set.Bookmarks = append(set.Bookmarks, annotations.Bookmark{
			ID:         b.Id,
			DocumentID: b.DocumentId,
			Anchor:     anchor.Anchor(b.Anchor),
			Text:       b.Snippet,
			Label:      b.Label,
			CreatedAt:  b.CreatedAt,
		})
	}

	return set, nil
}
