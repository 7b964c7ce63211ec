package speech

import (
	"context"
	"strings"
	"sync"
	"time"
)

// PacedEngine is a headless engine that "speaks" silently at the paced
// narration speed, emitting a word boundary per tick. It backs server-side
// sessions where no platform synthesizer is attached and keeps the rest of
// the pipeline (boundaries, progress, completion) fully exercised.
type PacedEngine struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	paused chan struct{} // closed when not paused
}

func NewPacedEngine() *PacedEngine {
	return &PacedEngine{}
}

func (e *PacedEngine) Speak(ctx context.Context, text string, opts Options, cb Callbacks) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.paused = nil
	e.mu.Unlock()

	words := wordOffsets(text)
	rate := opts.Rate
	if rate <= 0 {
		rate = 1.0
	}
	interval := time.Duration(float64(time.Minute) / (estimateWPM * rate))

	go func() {
		if cb.OnStart != nil {
			cb.OnStart()
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for _, off := range words {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			e.waitIfPaused(ctx)
			if ctx.Err() != nil {
				return
			}
			if cb.OnBoundary != nil {
				cb.OnBoundary(off)
			}
		}
		if cb.OnEnd != nil {
			cb.OnEnd()
		}
	}()
	return nil
}

func (e *PacedEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused == nil {
		e.paused = make(chan struct{})
	}
}

func (e *PacedEngine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused != nil {
		close(e.paused)
		e.paused = nil
	}
}

func (e *PacedEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.paused != nil {
		close(e.paused)
		e.paused = nil
	}
}

func (e *PacedEngine) waitIfPaused(ctx context.Context) {
	for {
		e.mu.Lock()
		ch := e.paused
		e.mu.Unlock()
		if ch == nil {
			return
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}

// wordOffsets returns the rune offset of each word start in text.
func wordOffsets(text string) []int {
	var offs []int
	inWord := false
	pos := 0
	for _, r := range text {
		isSpace := strings.ContainsRune(" \t\n\r", r)
		if !isSpace && !inWord {
			offs = append(offs, pos)
		}
		inWord = !isSpace
		pos++
	}
	return offs
}
