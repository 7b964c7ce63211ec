package implementation

import (
	"context"
	"errors"

	"ereader-be/internal/entity"
	"ereader-be/internal/mapper"
	"ereader-be/internal/model"
	"ereader-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadingStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReadingStateMapper
}

func NewReadingStateRepository(db *gorm.DB) contract.ReadingStateRepository {
	return &ReadingStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewReadingStateMapper(),
	}
}

func (r *ReadingStateRepositoryImpl) Upsert(ctx context.Context, state *entity.ReadingState) error {
	if state.Id == uuid.Nil {
		state.Id = uuid.New()
	}
	m := r.mapper.ToModel(state)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_position", "percentage", "time_read_seconds", "font_scale", "voice", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*state = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReadingStateRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) (*entity.ReadingState, error) {
	var m model.ReadingState
	err := r.db.WithContext(ctx).Where("document_id = ?", documentId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReadingStateRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ReadingState{}).Error
}
