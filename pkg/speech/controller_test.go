package speech

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine records calls and hands the test direct access to the
// callbacks of the latest utterance.
type fakeEngine struct {
	spoken   []string
	cancels  int
	pauses   int
	resumes  int
	lastCB   Callbacks
	speakErr error
}

func (e *fakeEngine) Speak(_ context.Context, text string, _ Options, cb Callbacks) error {
	if e.speakErr != nil {
		return e.speakErr
	}
	e.spoken = append(e.spoken, text)
	e.lastCB = cb
	return nil
}

func (e *fakeEngine) Pause()  { e.pauses++ }
func (e *fakeEngine) Resume() { e.resumes++ }
func (e *fakeEngine) Cancel() { e.cancels++ }

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newController(text string) (*Controller, *fakeEngine, *testClock) {
	eng := &fakeEngine{}
	clock := &testClock{t: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)}
	c := NewController(eng, nil, nil)
	c.SetClock(clock.now)
	c.SetDocument(text)
	return c, eng, clock
}

func TestSpeakFromOffsetRestartsNarration(t *testing.T) {
	text := strings.Repeat("word ", 2000) // 10000 runes
	c, eng, _ := newController(text)
	ctx := context.Background()

	require.NoError(t, c.Speak(ctx, 0))
	assert.Equal(t, Speaking, c.State())

	// Seeking while speaking cancels the live utterance and starts a new
	// one at the requested offset.
	require.NoError(t, c.Speak(ctx, 5000))
	assert.Equal(t, 1, eng.cancels)
	require.Len(t, eng.spoken, 2)
	assert.Equal(t, 5000, len([]rune(text))-len([]rune(eng.spoken[1])))
	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, 5000, c.EstimatedOffset())
}

func TestPauseWhenIdleIsNoOp(t *testing.T) {
	c, eng, _ := newController("short text")

	c.Pause()
	c.Resume()
	c.Stop()

	assert.Equal(t, Idle, c.State())
	assert.Zero(t, eng.pauses)
	assert.Zero(t, eng.resumes)
	assert.Zero(t, eng.cancels)
}

func TestPauseResumeCycle(t *testing.T) {
	c, eng, clock := newController(strings.Repeat("abcde ", 500))
	ctx := context.Background()

	require.NoError(t, c.Speak(ctx, 0))
	eng.lastCB.OnBoundary(120)
	clock.advance(3 * time.Second)

	c.Pause()
	assert.Equal(t, Paused, c.State())
	// 3s at rate 1.0 is 50 estimated runes past the boundary.
	pinnedAt := c.EstimatedOffset()
	assert.Equal(t, 170, pinnedAt)

	// The estimate stays pinned while paused.
	clock.advance(10 * time.Minute)
	assert.Equal(t, pinnedAt, c.EstimatedOffset())

	c.Resume()
	assert.Equal(t, Speaking, c.State())
	assert.Equal(t, 1, eng.resumes)
	clock.advance(3 * time.Second)
	assert.Equal(t, pinnedAt+50, c.EstimatedOffset())
}

func TestBoundaryCorrectsEstimateBackward(t *testing.T) {
	c, eng, clock := newController(strings.Repeat("abcde ", 500))
	require.NoError(t, c.Speak(context.Background(), 0))

	clock.advance(6 * time.Second) // estimate drifts to 100
	require.Equal(t, 100, c.EstimatedOffset())

	eng.lastCB.OnBoundary(60) // engine says we are actually at 60
	assert.Equal(t, 60, c.EstimatedOffset())
}

func TestStopPinsOffset(t *testing.T) {
	c, eng, clock := newController(strings.Repeat("abcde ", 500))
	require.NoError(t, c.Speak(context.Background(), 0))

	eng.lastCB.OnBoundary(200)
	clock.advance(time.Second)
	c.Stop()

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 1, eng.cancels)
	off := c.EstimatedOffset()
	assert.Equal(t, 216, off) // 200 + 1s at ~16.6 runes/s

	clock.advance(time.Hour)
	assert.Equal(t, off, c.EstimatedOffset())
}

func TestEngineErrorReturnsToIdle(t *testing.T) {
	c, eng, _ := newController("some narration text here")
	var done []error
	c.OnDone(func(err error) { done = append(done, err) })

	require.NoError(t, c.Speak(context.Background(), 0))
	boom := errors.New("synth crashed")
	eng.lastCB.OnError(boom)

	assert.Equal(t, Idle, c.State())
	require.Len(t, done, 1)
	assert.ErrorIs(t, done[0], boom)

	// The controller is immediately usable again.
	require.NoError(t, c.Speak(context.Background(), 0))
	assert.Equal(t, Speaking, c.State())
}

func TestNaturalEndPinsAtDocumentEnd(t *testing.T) {
	text := "a short passage"
	c, eng, _ := newController(text)
	var done []error
	c.OnDone(func(err error) { done = append(done, err) })

	require.NoError(t, c.Speak(context.Background(), 0))
	eng.lastCB.OnEnd()

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, len([]rune(text)), c.EstimatedOffset())
	require.Len(t, done, 1)
	assert.NoError(t, done[0])
}

func TestStaleCallbacksIgnoredAfterRestart(t *testing.T) {
	c, eng, _ := newController(strings.Repeat("abcde ", 500))
	ctx := context.Background()

	require.NoError(t, c.Speak(ctx, 0))
	stale := eng.lastCB
	require.NoError(t, c.Speak(ctx, 1000))

	stale.OnBoundary(40)
	stale.OnEnd()

	assert.Equal(t, Speaking, c.State(), "old utterance must not end the new one")
	assert.Equal(t, 1000, c.EstimatedOffset())
}

func TestSpeakWithoutEngine(t *testing.T) {
	c := NewController(nil, nil, nil)
	c.SetDocument("text")
	assert.ErrorIs(t, c.Speak(context.Background(), 0), ErrEngineUnavailable)
}

func TestSpeakPastEndIsIdleCompletion(t *testing.T) {
	c, eng, _ := newController("tiny")
	require.NoError(t, c.Speak(context.Background(), 99))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 4, c.EstimatedOffset())
	assert.Empty(t, eng.spoken)
}
