package implementation

import (
	"context"
	"errors"

	"ereader-be/internal/entity"
	"ereader-be/internal/mapper"
	"ereader-be/internal/model"
	"ereader-be/internal/repository/contract"
	"ereader-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HighlightRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewHighlightRepository(db *gorm.DB) contract.HighlightRepository {
	return &HighlightRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func (r *HighlightRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HighlightRepositoryImpl) Create(ctx context.Context, h *entity.Highlight) error {
	m := r.mapper.HighlightToModel(h)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*h = *r.mapper.HighlightToEntity(m)
	return nil
}

func (r *HighlightRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Highlight{}, id).Error
}

func (r *HighlightRepositoryImpl) DeleteAllByDocumentIdUnscoped(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("document_id = ?", documentId).Delete(&model.Highlight{}).Error
}

func (r *HighlightRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Highlight, error) {
	var m model.Highlight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.HighlightToEntity(&m), nil
}

func (r *HighlightRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Highlight, error) {
	var models []*model.Highlight
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.HighlightsToEntities(models), nil
}

func (r *HighlightRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Highlight{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
