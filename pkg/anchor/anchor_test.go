package anchor

import (
	"strings"
	"testing"

	"ereader-be/pkg/rendition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderSample builds a document whose first paragraph is long enough to
// be chunked into several blocks, so a font-scale change shifts the block
// indices of everything after it.
func renderSample(t *testing.T) (*rendition.Renderer, *rendition.View) {
	t.Helper()
	filler := strings.TrimSpace(strings.Repeat("All work and no play makes the reader a very dull person indeed. ", 10))
	text := strings.Join([]string{
		filler,
		"A distinctive second paragraph with entirely unique words inside of it.",
		"The closing paragraph of the miniature document used by the codec tests.",
	}, "\n\n")
	r := rendition.New(text)
	return r, r.Render()
}

func TestEncodeResolveRoundTrip(t *testing.T) {
	_, view := renderSample(t)

	tests := []struct {
		name string
		rng  Range
	}{
		{"word at block start", Range{Block: 0, Start: 0, End: 8}},
		{"mid block span", Range{Block: 1, Start: 10, End: 34}},
		{"collapsed range", Range{Block: 2, Start: 5, End: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Encode(view, tt.rng)
			require.NoError(t, err)

			got, err := Resolve(a, view)
			require.NoError(t, err)
			assert.Equal(t, tt.rng, got)
		})
	}
}

func TestEncodeRejectsOutOfBounds(t *testing.T) {
	_, view := renderSample(t)

	_, err := Encode(view, Range{Block: 0, Start: 0, End: 100000})
	assert.Error(t, err)

	_, err = Encode(view, Range{Block: 99, Start: 0, End: 1})
	assert.Error(t, err)
}

func TestResolveFallsBackToFingerprint(t *testing.T) {
	r, view := renderSample(t)

	// Anchor a span inside the distinctive paragraph, which sits after the
	// chunked filler paragraph.
	target := view.Blocks[len(view.Blocks)-2]
	a, err := Encode(view, Range{Block: target.Index, Start: 2, End: 40})
	require.NoError(t, err)

	// Reflow so the filler re-chunks and every later block index moves.
	r.SetFontScale(60)
	reflowed := r.CurrentView()
	require.NotEqual(t, view.Generation, reflowed.Generation)

	got, err := Resolve(a, reflowed)
	require.NoError(t, err)

	blk := reflowed.BlockByIndex(got.Block)
	require.NotNil(t, blk)
	runes := []rune(blk.Text())
	assert.True(t, strings.HasPrefix(string(runes[got.Start:got.End]), a.Fingerprint()),
		"fallback range should start with the stored fingerprint")
}

func TestResolveNotFound(t *testing.T) {
	_, view := renderSample(t)

	_, err := Resolve(Anchor("b42.0-10~text that is nowhere"), view)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveMalformed(t *testing.T) {
	_, view := renderSample(t)

	for _, raw := range []string{"", "nonsense", "b1.x-y~fp"} {
		_, err := Resolve(Anchor(raw), view)
		assert.Error(t, err, raw)
	}
}
