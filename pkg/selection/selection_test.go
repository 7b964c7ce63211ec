package selection

import (
	"testing"

	"ereader-be/pkg/rendition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromView(t *testing.T) {
	r := rendition.New("Some words to select from.\n\n   \n\nFinal paragraph here.")
	view := r.Render()

	tests := []struct {
		name     string
		sel      Selection
		wantText string
	}{
		{"valid span", Selection{Block: 0, Start: 5, End: 10}, "words"},
		{"whitespace only", Selection{Block: 0, Start: 4, End: 5}, ""},
		{"empty span", Selection{Block: 0, Start: 3, End: 3}, ""},
		{"inverted span", Selection{Block: 0, Start: 10, End: 5}, ""},
		{"out of bounds", Selection{Block: 0, Start: 0, End: 9999}, ""},
		{"unknown block", Selection{Block: 77, Start: 0, End: 4}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cap := FromView(view, tt.sel)
			if tt.wantText == "" {
				assert.Nil(t, cap)
				return
			}
			require.NotNil(t, cap)
			assert.Equal(t, tt.wantText, cap.Text)
			assert.NotEmpty(t, cap.Anchor)
		})
	}
}

func TestFromViewNilView(t *testing.T) {
	assert.Nil(t, FromView(nil, Selection{Block: 0, Start: 0, End: 3}))
}
