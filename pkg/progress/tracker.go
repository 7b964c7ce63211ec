// Package progress maintains the single logical reading position of the
// active document and derives percentage and time estimates from it.
// It is fed from two sides -- manual navigation and estimated speech
// playback offsets -- and is the one source of truth for any progress
// display.
package progress

import "time"

const (
	// baselineWPM is the assumed narration pace at rate 1.0.
	baselineWPM = 200
	// minEffectiveWPM floors the effective pace so time-remaining math
	// cannot blow up on very slow rates.
	minEffectiveWPM = 100
)

// ReadingProgress is a derived view; it is recomputed on demand and never
// persisted as a source of truth.
type ReadingProgress struct {
	CurrentPosition      int     `json:"current_position"`
	TotalLength          int     `json:"total_length"`
	Percentage           float64 `json:"percentage"`
	TimeReadMinutes      float64 `json:"time_read_minutes"`
	TimeRemainingMinutes float64 `json:"time_remaining_minutes"`
}

// Tracker accumulates reading state for one document. It is confined to
// the session's event loop.
type Tracker struct {
	now func() time.Time

	position   int
	total      int
	totalWords int
	rate       float64

	speaking    bool
	speakingAt  time.Time
	accumulated time.Duration
}

func NewTracker() *Tracker {
	return &Tracker{
		now:  time.Now,
		rate: 1.0,
	}
}

// SetClock overrides the time source. Tests only.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// SetDocument resets the tracker for a new document. The configured rate
// survives, the read-time baseline does not.
func (t *Tracker) SetDocument(totalChars, totalWords int) {
	t.position = 0
	t.total = totalChars
	t.totalWords = totalWords
	t.speaking = false
	t.accumulated = 0
}

// SetRate records the narration rate used for time estimates.
func (t *Tracker) SetRate(rate float64) {
	if rate > 0 {
		t.rate = rate
	}
}

// Rate returns the configured narration rate.
func (t *Tracker) Rate() float64 {
	return t.rate
}

// OnNavigate moves the position from a page turn. The read-time baseline
// is untouched; turning pages is still the same reading stretch.
func (t *Tracker) OnNavigate(position, totalLength int) {
	if totalLength > 0 {
		t.total = totalLength
	}
	t.position = clampPos(position, t.total)
}

// OnSeek moves the position from an explicit jump (offset or percentage)
// and resets the accumulated read-time baseline.
func (t *Tracker) OnSeek(position, totalLength int) {
	t.OnNavigate(position, totalLength)
	t.resetBaseline()
}

// OnSpeechTick moves the position from an estimated playback offset.
// While playback is active the position never moves backwards.
func (t *Tracker) OnSpeechTick(estimatedPosition int) {
	p := clampPos(estimatedPosition, t.total)
	if t.speaking && p < t.position {
		return
	}
	t.position = p
}

// SpeechStarted opens a wall-clock accumulation window.
func (t *Tracker) SpeechStarted() {
	if t.speaking {
		return
	}
	t.speaking = true
	t.speakingAt = t.now()
}

// SpeechStopped closes the accumulation window (pause or stop). Paused
// time does not count as reading time.
func (t *Tracker) SpeechStopped() {
	if !t.speaking {
		return
	}
	t.accumulated += t.now().Sub(t.speakingAt)
	t.speaking = false
}

// Position returns the current logical position.
func (t *Tracker) Position() int {
	return t.position
}

// Progress derives the full progress view from the current state. A
// zero-length document (failed extraction) reports zero progress rather
// than dividing by zero.
func (t *Tracker) Progress() ReadingProgress {
	p := ReadingProgress{
		CurrentPosition: t.position,
		TotalLength:     t.total,
	}
	if t.total <= 0 {
		return p
	}

	p.Percentage = float64(t.position) / float64(t.total) * 100
	if p.Percentage < 0 {
		p.Percentage = 0
	}
	if p.Percentage > 100 {
		p.Percentage = 100
	}

	read := t.accumulated
	if t.speaking {
		read += t.now().Sub(t.speakingAt)
	}
	p.TimeReadMinutes = read.Minutes()

	remainingWords := float64(t.totalWords) * float64(t.total-t.position) / float64(t.total)
	p.TimeRemainingMinutes = remainingWords / t.effectiveWPM()
	return p
}

func (t *Tracker) effectiveWPM() float64 {
	wpm := baselineWPM * t.rate
	if wpm < minEffectiveWPM {
		wpm = minEffectiveWPM
	}
	return wpm
}

func (t *Tracker) resetBaseline() {
	t.accumulated = 0
	if t.speaking {
		t.speakingAt = t.now()
	}
}

func clampPos(p, total int) int {
	if p < 0 {
		return 0
	}
	if total > 0 && p > total {
		return total
	}
	return p
}
