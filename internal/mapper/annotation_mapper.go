package mapper

import (
	"time"

	"ereader-be/internal/entity"
	"ereader-be/internal/model"

	"gorm.io/gorm"
)

type AnnotationMapper struct{}

func NewAnnotationMapper() *AnnotationMapper {
	return &AnnotationMapper{}
}

func (m *AnnotationMapper) HighlightToEntity(h *model.Highlight) *entity.Highlight {
	if h == nil {
		return nil
	}

	var deletedAt *time.Time
	if h.DeletedAt.Valid {
		t := h.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Highlight{
		Id:           h.Id,
		DocumentId:   h.DocumentId,
		Anchor:       h.Anchor,
		SelectedText: h.SelectedText,
		Color:        h.Color,
		CreatedAt:    h.CreatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    h.DeletedAt.Valid,
	}
}

func (m *AnnotationMapper) HighlightToModel(h *entity.Highlight) *model.Highlight {
	if h == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if h.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *h.DeletedAt, Valid: true}
	} else if h.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Highlight{
		Id:           h.Id,
		DocumentId:   h.DocumentId,
		Anchor:       h.Anchor,
		SelectedText: h.SelectedText,
		Color:        h.Color,
		CreatedAt:    h.CreatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *AnnotationMapper) HighlightsToEntities(hs []*model.Highlight) []*entity.Highlight {
	entities := make([]*entity.Highlight, len(hs))
	for i, h := range hs {
		entities[i] = m.HighlightToEntity(h)
	}
	return entities
}

func (m *AnnotationMapper) NoteToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	return &entity.Note{
		Id:           n.Id,
		DocumentId:   n.DocumentId,
		Anchor:       n.Anchor,
		SelectedText: n.SelectedText,
		Body:         n.Body,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    n.DeletedAt.Valid,
	}
}

func (m *AnnotationMapper) NoteToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	return &model.Note{
		Id:           n.Id,
		DocumentId:   n.DocumentId,
		Anchor:       n.Anchor,
		SelectedText: n.SelectedText,
		Body:         n.Body,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *AnnotationMapper) NotesToEntities(ns []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(ns))
	for i, n := range ns {
		entities[i] = m.NoteToEntity(n)
	}
	return entities
}

func (m *AnnotationMapper) BookmarkToEntity(b *model.Bookmark) *entity.Bookmark {
	if b == nil {
		return nil
	}

	var deletedAt *time.Time
	if b.DeletedAt.Valid {
		t := b.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Bookmark{
		Id:         b.Id,
		DocumentId: b.DocumentId,
		Anchor:     b.Anchor,
		Snippet:    b.Snippet,
		Label:      b.Label,
		CreatedAt:  b.CreatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  b.DeletedAt.Valid,
	}
}

func (m *AnnotationMapper) BookmarkToModel(b *entity.Bookmark) *model.Bookmark {
	if b == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if b.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *b.DeletedAt, Valid: true}
	} else if b.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	return &model.Bookmark{
		Id:         b.Id,
		DocumentId: b.DocumentId,
		Anchor:     b.Anchor,
		Snippet:    b.Snippet,
		Label:      b.Label,
		CreatedAt:  b.CreatedAt,
		DeletedAt:  deletedAt,
	}
}

func (m *AnnotationMapper) BookmarksToEntities(bs []*model.Bookmark) []*entity.Bookmark {
	entities := make([]*entity.Bookmark, len(bs))
	for i, b := range bs {
		entities[i] = m.BookmarkToEntity(b)
	}
	return entities
}
