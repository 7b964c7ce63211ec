package mapper

import (
	"testing"
	"time"

	"ereader-be/internal/entity"
	"ereader-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingStateVoiceRoundTrip(t *testing.T) {
	m := NewReadingStateMapper()

	state := &entity.ReadingState{
		Id:              uuid.New(),
		DocumentId:      uuid.New(),
		LastPosition:    4200,
		Percentage:      37.5,
		TimeReadSeconds: 900,
		FontScale:       120,
		Voice: entity.VoiceSettings{
			Voice:  "en-GB-news",
			Rate:   1.5,
			Pitch:  0.9,
			Volume: 0.8,
		},
		UpdatedAt: time.Now(),
	}

	row := m.ToModel(state)
	require.NotEmpty(t, row.Voice)

	back := m.ToEntity(row)
	assert.Equal(t, state.Voice, back.Voice)
	assert.Equal(t, state.LastPosition, back.LastPosition)
	assert.Equal(t, state.FontScale, back.FontScale)
}

func TestReadingStateCorruptVoiceFallsBack(t *testing.T) {
	m := NewReadingStateMapper()

	row := &model.ReadingState{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		Voice:      []byte("{not json"),
	}

	state := m.ToEntity(row)
	require.NotNil(t, state)
	// Rate must stay usable for time estimates
	assert.Equal(t, 1.0, state.Voice.Rate)
}

func TestReadingStateNilSafe(t *testing.T) {
	m := NewReadingStateMapper()
	assert.Nil(t, m.ToEntity(nil))
	assert.Nil(t, m.ToModel(nil))
}
