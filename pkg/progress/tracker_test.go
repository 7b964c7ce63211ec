package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTracker(totalChars, totalWords int) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
	tr := NewTracker()
	tr.SetClock(clock.now)
	tr.SetDocument(totalChars, totalWords)
	return tr, clock
}

func TestSpeechTimeAccumulation(t *testing.T) {
	tr, clock := newTracker(10000, 2000)

	tr.SpeechStarted()
	clock.advance(60 * time.Second)
	tr.SpeechStopped()

	p := tr.Progress()
	assert.InDelta(t, 1.0, p.TimeReadMinutes, 0.001, "60s of narration is one minute read")

	// Paused time must not count.
	clock.advance(5 * time.Minute)
	p = tr.Progress()
	assert.InDelta(t, 1.0, p.TimeReadMinutes, 0.001)
}

func TestPercentageClamped(t *testing.T) {
	tr, _ := newTracker(100, 20)

	tr.OnNavigate(-50, 0)
	assert.Equal(t, 0.0, tr.Progress().Percentage)

	tr.OnNavigate(500, 0)
	p := tr.Progress()
	assert.Equal(t, 100.0, p.Percentage)
	assert.Equal(t, 100, p.CurrentPosition)
}

func TestZeroLengthDocument(t *testing.T) {
	tr, _ := newTracker(0, 0)
	tr.OnNavigate(40, 0)

	p := tr.Progress()
	assert.Equal(t, 0.0, p.Percentage)
	assert.Equal(t, 0.0, p.TimeRemainingMinutes)
}

func TestTimeRemainingShrinksWithPosition(t *testing.T) {
	tr, _ := newTracker(10000, 2000)

	tr.OnNavigate(0, 0)
	atStart := tr.Progress().TimeRemainingMinutes
	require.InDelta(t, 10.0, atStart, 0.001, "2000 words at 200 wpm")

	tr.OnNavigate(5000, 0)
	atMiddle := tr.Progress().TimeRemainingMinutes
	assert.InDelta(t, 5.0, atMiddle, 0.001)
	assert.Less(t, atMiddle, atStart)

	tr.OnNavigate(10000, 0)
	assert.Equal(t, 0.0, tr.Progress().TimeRemainingMinutes)
}

func TestEffectiveRateFloor(t *testing.T) {
	tr, _ := newTracker(10000, 2000)

	tr.SetRate(0.1) // 20 wpm raw, floored to 100
	assert.InDelta(t, 20.0, tr.Progress().TimeRemainingMinutes, 0.001)

	tr.SetRate(2.0)
	assert.InDelta(t, 5.0, tr.Progress().TimeRemainingMinutes, 0.001)
}

func TestSpeechTickNeverMovesBackwardWhileSpeaking(t *testing.T) {
	tr, _ := newTracker(10000, 2000)

	tr.SpeechStarted()
	tr.OnSpeechTick(400)
	tr.OnSpeechTick(350) // jittery estimate
	assert.Equal(t, 400, tr.Position())

	tr.SpeechStopped()
	tr.OnNavigate(100, 0) // manual navigation may rewind
	assert.Equal(t, 100, tr.Position())
}

func TestSeekResetsReadTimeBaseline(t *testing.T) {
	tr, clock := newTracker(10000, 2000)

	tr.SpeechStarted()
	clock.advance(2 * time.Minute)
	tr.SpeechStopped()
	require.InDelta(t, 2.0, tr.Progress().TimeReadMinutes, 0.001)

	tr.OnSeek(7000, 0)
	assert.Equal(t, 0.0, tr.Progress().TimeReadMinutes)
	assert.Equal(t, 7000, tr.Position())
}

func TestPageTurnKeepsReadTime(t *testing.T) {
	tr, clock := newTracker(10000, 2000)

	tr.SpeechStarted()
	clock.advance(3 * time.Minute)
	tr.SpeechStopped()

	tr.OnNavigate(5000, 0)
	assert.InDelta(t, 3.0, tr.Progress().TimeReadMinutes, 0.001,
		"turning pages stays within the same reading stretch")
}
