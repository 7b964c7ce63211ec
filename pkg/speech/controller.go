package speech

import (
	"context"
	"time"
	"unicode/utf8"

	"ereader-be/internal/pkg/logger"
)

// State is the playback state machine.
type State int

const (
	Idle State = iota
	Speaking
	Paused
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Controller runs narration for one document and tracks the estimated
// spoken offset. It is confined to the session's event loop: engine
// callbacks are routed back onto that loop through the dispatch function,
// so no internal locking is needed.
type Controller struct {
	engine   Engine
	log      logger.ILogger
	dispatch func(fn func())
	now      func() time.Time

	opts Options

	state State
	seq   uint64 // utterance token; stale callbacks carry an old one

	text       string // document text being narrated
	baseOffset int    // document offset the current utterance starts at
	endOffset  int    // document offset the current utterance finishes at

	lastBoundary int       // document offset of the last engine boundary
	boundaryAt   time.Time // when that boundary (or resume) happened
	pinned       int       // frozen offset while not actively speaking

	onState func(State)
	onDone  func(err error)
}

// NewController wires a controller to an engine. dispatch must execute
// the given function on the session loop; passing nil runs callbacks
// inline, which is only safe for engines that already deliver on the
// calling goroutine.
func NewController(engine Engine, log logger.ILogger, dispatch func(fn func())) *Controller {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Controller{
		engine:   engine,
		log:      log,
		dispatch: dispatch,
		now:      time.Now,
		opts:     DefaultOptions(),
	}
}

// SetClock overrides the time source. Tests only.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// OnStateChange registers the state transition callback.
func (c *Controller) OnStateChange(fn func(State)) {
	c.onState = fn
}

// OnDone registers the callback fired when an utterance ends naturally or
// fails. A nil error means natural completion.
func (c *Controller) OnDone(fn func(err error)) {
	c.onDone = fn
}

// State returns the current playback state.
func (c *Controller) State() State {
	return c.state
}

// Options returns the active voice profile.
func (c *Controller) Options() Options {
	return c.opts
}

// Configure replaces the voice profile. It applies from the next Speak;
// an active utterance keeps the profile it started with.
func (c *Controller) Configure(opts Options) {
	if opts.Rate <= 0 {
		opts.Rate = 1.0
	}
	c.opts = opts
}

// SetDocument loads the text to narrate and resets playback to idle.
func (c *Controller) SetDocument(text string) {
	c.cancelActive()
	c.text = text
	c.pinned = 0
	c.setState(Idle)
}

// Speak starts narration at the given document offset. Any active or
// paused utterance is cancelled first, so seeking is simply Speak at the
// new offset.
func (c *Controller) Speak(ctx context.Context, from int) error {
	if c.engine == nil {
		return ErrEngineUnavailable
	}
	c.cancelActive()

	runes := []rune(c.text)
	if from < 0 {
		from = 0
	}
	if from >= len(runes) {
		c.pinned = len(runes)
		c.setState(Idle)
		return nil
	}

	c.seq++
	token := c.seq
	c.baseOffset = from
	c.endOffset = len(runes)
	c.lastBoundary = from
	c.boundaryAt = c.now()

	cb := Callbacks{
		OnStart:    func() { c.dispatch(func() { c.handleStart(token) }) },
		OnBoundary: func(off int) { c.dispatch(func() { c.handleBoundary(token, off) }) },
		OnEnd:      func() { c.dispatch(func() { c.handleEnd(token) }) },
		OnError:    func(err error) { c.dispatch(func() { c.handleError(token, err) }) },
	}
	if err := c.engine.Speak(ctx, string(runes[from:]), c.opts, cb); err != nil {
		c.pinned = from
		c.setState(Idle)
		return err
	}
	c.setState(Speaking)
	return nil
}

// Pause suspends active narration, pinning the estimated offset. A no-op
// unless speaking.
func (c *Controller) Pause() {
	if c.state != Speaking {
		return
	}
	c.pinned = c.estimateLive()
	c.engine.Pause()
	c.setState(Paused)
}

// Resume continues paused narration. A no-op unless paused.
func (c *Controller) Resume() {
	if c.state != Paused {
		return
	}
	c.boundaryAt = c.now()
	c.lastBoundary = c.pinned
	c.engine.Resume()
	c.setState(Speaking)
}

// Stop cancels narration and pins the offset where it stopped.
func (c *Controller) Stop() {
	if c.state == Idle {
		return
	}
	if c.state == Speaking {
		c.pinned = c.estimateLive()
	}
	c.cancelActive()
	c.setState(Idle)
}

// EstimatedOffset is the best guess at the document offset narration has
// reached: the last engine boundary plus wall-clock extrapolation at the
// configured rate, never past the end of the text.
func (c *Controller) EstimatedOffset() int {
	if c.state != Speaking {
		return c.pinned
	}
	return c.estimateLive()
}

func (c *Controller) estimateLive() int {
	est := c.lastBoundary + estimatedAdvance(c.now().Sub(c.boundaryAt), c.opts.Rate)
	if est > c.endOffset {
		est = c.endOffset
	}
	return est
}

func (c *Controller) handleStart(token uint64) {
	if token != c.seq {
		return
	}
	c.boundaryAt = c.now()
}

func (c *Controller) handleBoundary(token uint64, off int) {
	if token != c.seq || c.state != Speaking {
		return
	}
	b := c.baseOffset + off
	if b > c.endOffset {
		b = c.endOffset
	}
	// Boundaries correct the estimate even when they land behind it.
	c.lastBoundary = b
	c.boundaryAt = c.now()
}

func (c *Controller) handleEnd(token uint64) {
	if token != c.seq {
		return
	}
	c.pinned = c.endOffset
	c.setState(Idle)
	if c.onDone != nil {
		c.onDone(nil)
	}
}

func (c *Controller) handleError(token uint64, err error) {
	if token != c.seq {
		return
	}
	if c.log != nil {
		c.log.Error("SpeechController", "engine failed mid-utterance", map[string]interface{}{
			"error":  err.Error(),
			"offset": c.EstimatedOffset(),
		})
	}
	if c.state == Speaking {
		c.pinned = c.estimateLive()
	}
	c.setState(Idle)
	if c.onDone != nil {
		c.onDone(err)
	}
}

// cancelActive invalidates the current utterance token and tells the
// engine to drop it.
func (c *Controller) cancelActive() {
	if c.state == Idle {
		return
	}
	c.seq++
	if c.engine != nil {
		c.engine.Cancel()
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// TextLength reports the rune length of the loaded document text.
func (c *Controller) TextLength() int {
	return utf8.RuneCountInString(c.text)
}
