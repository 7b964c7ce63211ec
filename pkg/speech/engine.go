// Package speech drives narration of document text through a pluggable
// speech engine and keeps a continuous estimate of the spoken position
// between the engine's coarse boundary callbacks.
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrEngineUnavailable is returned when no speech engine is configured or
// the configured engine reports it cannot speak.
var ErrEngineUnavailable = errors.New("speech engine unavailable")

// Options selects the voice profile for an utterance.
type Options struct {
	Voice  string  `json:"voice"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// DefaultOptions returns the neutral voice profile.
func DefaultOptions() Options {
	return Options{Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Callbacks is how an engine reports utterance lifecycle back to the
// controller. Engines may emit these from their own goroutines; the
// controller serializes them through the dispatch function it is built
// with.
type Callbacks struct {
	// OnStart fires once when audio actually begins.
	OnStart func()
	// OnBoundary reports the rune offset within the utterance text that
	// playback has reached. Granularity is engine-dependent (word or
	// sentence level).
	OnBoundary func(offset int)
	// OnEnd fires when the utterance finishes naturally. Cancelled
	// utterances do not fire it.
	OnEnd func()
	// OnError fires when the engine fails mid-utterance.
	OnError func(err error)
}

// Engine is the platform speech backend. Exactly one utterance is active
// at a time; Speak on a busy engine is preceded by Cancel by the caller.
type Engine interface {
	// Speak starts narrating text. It returns once the utterance is
	// queued; progress arrives through cb.
	Speak(ctx context.Context, text string, opts Options, cb Callbacks) error
	// Pause suspends the active utterance, keeping its position.
	Pause()
	// Resume continues a paused utterance.
	Resume()
	// Cancel discards the active utterance. No further callbacks for it
	// may fire after Cancel returns.
	Cancel()
}

// pacing constants for position estimation between boundaries.
const (
	estimateWPM    = 200
	estimateCharsW = 5
)

// charsPerSecond is the estimated narration speed in runes at the given
// rate.
func charsPerSecond(rate float64) float64 {
	return rate * estimateWPM * estimateCharsW / 60
}

// estimatedAdvance converts elapsed wall time into an estimated rune
// advance at the given rate.
func estimatedAdvance(elapsed time.Duration, rate float64) int {
	return int(elapsed.Seconds() * charsPerSecond(rate))
}
