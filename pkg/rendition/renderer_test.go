package rendition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiPageText() string {
	paras := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		paras = append(paras, strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 20)))
	}
	return strings.Join(paras, "\n\n")
}

func TestRenderEmptyDocument(t *testing.T) {
	r := New("")

	view := r.Render()
	require.NotNil(t, view)
	assert.Empty(t, view.Blocks)
	assert.Equal(t, 0, r.Location().Offset)
	assert.Equal(t, 0.0, r.LocationToPercentage(r.Location()))
}

func TestViewTextMatchesSource(t *testing.T) {
	r := New("Hello world\n\nSecond para")

	view := r.Render()
	require.Len(t, view.Blocks, 2)
	assert.Equal(t, "Hello world\nSecond para", view.Text())
	assert.Equal(t, 0, view.Blocks[0].Offset)
}

func TestPaginationBounds(t *testing.T) {
	r := New(multiPageText())
	r.Render()

	assert.False(t, r.PrevPage())
	require.True(t, r.NextPage())
	assert.Equal(t, 1, r.Location().Page)

	steps := 0
	for r.NextPage() {
		steps++
		require.Less(t, steps, 1000)
	}
	last := r.Location().Page
	assert.False(t, r.NextPage())
	assert.Equal(t, last, r.Location().Page)

	require.True(t, r.PrevPage())
	assert.Equal(t, last-1, r.Location().Page)
}

func TestDisplayOffsetFindsPage(t *testing.T) {
	r := New(multiPageText())
	r.Render()

	r.DisplayOffset(r.DocLength() - 1)
	loc := r.Location()
	assert.Greater(t, loc.Page, 0)
	assert.LessOrEqual(t, loc.Offset, r.DocLength()-1)

	r.DisplayOffset(0)
	assert.Equal(t, 0, r.Location().Page)
}

func TestFontScaleClampAndReflow(t *testing.T) {
	r := New(multiPageText())
	before := r.Render().Generation

	r.SetFontScale(500)
	assert.Equal(t, 200, r.FontScale())
	assert.NotEqual(t, before, r.CurrentView().Generation)

	r.SetFontScale(10)
	assert.Equal(t, 50, r.FontScale())
}

func TestFontScaleKeepsPosition(t *testing.T) {
	r := New(multiPageText())
	r.Render()
	require.True(t, r.NextPage())
	keep := r.Location().Offset

	r.SetFontScale(200)

	loc := r.Location()
	assert.LessOrEqual(t, loc.Offset, keep)
	assert.GreaterOrEqual(t, keep, r.CurrentView().PageStart)
}

func TestRelocatedFiresOnNavigation(t *testing.T) {
	r := New(multiPageText())
	r.Render()

	var got []Location
	r.OnRelocated(func(loc Location) { got = append(got, loc) })

	require.True(t, r.NextPage())
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Page)
}

func TestLocationToPercentageClamps(t *testing.T) {
	r := New("short text")
	r.Render()

	assert.Equal(t, 0.0, r.LocationToPercentage(Location{Offset: -5}))
	assert.Equal(t, 100.0, r.LocationToPercentage(Location{Offset: r.DocLength() * 2}))
}
