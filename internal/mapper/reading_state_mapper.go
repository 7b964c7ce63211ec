package mapper

import (
	"encoding/json"

	"ereader-be/internal/entity"
	"ereader-be/internal/model"
)

type ReadingStateMapper struct{}

func NewReadingStateMapper() *ReadingStateMapper {
	return &ReadingStateMapper{}
}

func (m *ReadingStateMapper) ToEntity(s *model.ReadingState) *entity.ReadingState {
	if s == nil {
		return nil
	}

	var voice entity.VoiceSettings
	if len(s.Voice) > 0 {
		// A corrupt blob falls back to defaults rather than failing a read.
		_ = json.Unmarshal(s.Voice, &voice)
	}
	if voice.Rate == 0 {
		voice.Rate = 1.0
	}

	return &entity.ReadingState{
		Id:              s.Id,
		DocumentId:      s.DocumentId,
		LastPosition:    s.LastPosition,
		Percentage:      s.Percentage,
		TimeReadSeconds: s.TimeReadSeconds,
		FontScale:       s.FontScale,
		Voice:           voice,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *ReadingStateMapper) ToModel(s *entity.ReadingState) *model.ReadingState {
	if s == nil {
		return nil
	}

	voice, err := json.Marshal(s.Voice)
	if err != nil {
		voice = nil
	}

	return &model.ReadingState{
		Id:              s.Id,
		DocumentId:      s.DocumentId,
		LastPosition:    s.LastPosition,
		Percentage:      s.Percentage,
		TimeReadSeconds: s.TimeReadSeconds,
		FontScale:       s.FontScale,
		Voice:           voice,
		UpdatedAt:       s.UpdatedAt,
	}
}
