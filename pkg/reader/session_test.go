package reader

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ereader-be/pkg/annotations"
	"ereader-be/pkg/rendition"
	"ereader-be/pkg/selection"
	"ereader-be/pkg/speech"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler queues deferred work until the test fires it.
type manualScheduler struct {
	mu      sync.Mutex
	queue   []func()
	dropped int
}

func (m *manualScheduler) AfterFunc(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
	idx := len(m.queue) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.queue) && m.queue[idx] != nil {
			m.queue[idx] = nil
			m.dropped++
		}
	}
}

// fire runs every still-scheduled function once.
func (m *manualScheduler) fire() {
	m.mu.Lock()
	pending := m.queue
	m.queue = nil
	m.mu.Unlock()
	for _, fn := range pending {
		if fn != nil {
			fn()
		}
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) listen(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type nullEngine struct {
	mu     sync.Mutex
	lastCB speech.Callbacks
	spoken int
}

func (e *nullEngine) Speak(_ context.Context, _ string, _ speech.Options, cb speech.Callbacks) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastCB = cb
	e.spoken++
	return nil
}
func (e *nullEngine) Pause()  {}
func (e *nullEngine) Resume() {}
func (e *nullEngine) Cancel() {}

func (e *nullEngine) callbacks() speech.Callbacks {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCB
}

const sessionText = "The quick brown fox jumps over the lazy dog near the river bank.\n\n" +
	"A second paragraph keeps the narration going for a little while longer."

func newSession(t *testing.T) (*Session, *manualScheduler, *eventRecorder, *nullEngine) {
	t.Helper()
	sched := &manualScheduler{}
	eng := &nullEngine{}
	s := NewSession(Config{Engine: eng, Scheduler: sched})
	t.Cleanup(s.Close)

	rec := &eventRecorder{}
	s.Subscribe(rec.listen)

	s.OpenDocument(uuid.New(), sessionText, len(strings.Fields(sessionText)), annotations.Set{})
	return s, sched, rec, eng
}

func TestOpenDocumentRendersAndAnnounces(t *testing.T) {
	s, _, rec, _ := newSession(t)

	view := s.View()
	require.NotNil(t, view)
	assert.NotEmpty(t, view.Blocks)
	assert.NotEmpty(t, rec.ofType(EventViewUpdated))
	assert.NotEmpty(t, rec.ofType(EventProgress))
	assert.Equal(t, ModeRead, s.CurrentMode())
}

func TestHighlightModeFlow(t *testing.T) {
	s, sched, rec, _ := newSession(t)

	s.EnterHighlightMode()
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 4, End: 19}, ""))

	set := s.Annotations()
	require.Len(t, set.Highlights, 1)
	assert.Equal(t, "quick brown fox", set.Highlights[0].Text)
	assert.Equal(t, annotations.DefaultHighlightColor, set.Highlights[0].Color)
	assert.NotEmpty(t, rec.ofType(EventAnnotationsChanged))

	// The decoration lands after the debounced pass.
	sched.fire()
	view := s.View()
	found := false
	for _, b := range view.Blocks {
		for _, n := range b.Nodes {
			if n.Kind == rendition.NodeHighlight && n.Text == "quick brown fox" {
				found = true
			}
		}
	}
	assert.True(t, found, "highlight decoration applied")
}

func TestSelectIgnoresInvalidGesture(t *testing.T) {
	s, _, _, _ := newSession(t)

	s.EnterHighlightMode()
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 10, End: 10}, ""))
	require.NoError(t, s.Select(selection.Selection{Block: 99, Start: 0, End: 5}, ""))

	assert.Empty(t, s.Annotations().Highlights)
}

func TestNoteModeFlow(t *testing.T) {
	s, _, _, _ := newSession(t)

	_, err := s.SaveNote("too early")
	assert.ErrorIs(t, err, ErrNotInNoteMode)

	s.EnterNoteMode()
	_, err = s.SaveNote("no selection yet")
	assert.ErrorIs(t, err, ErrNothingToAnnotate)

	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 4, End: 19}, ""))
	note, err := s.SaveNote("foxes are fast")
	require.NoError(t, err)
	assert.Equal(t, "quick brown fox", note.SelectedText)
	assert.Equal(t, "foxes are fast", note.Body)
	assert.Equal(t, ModeRead, s.CurrentMode())

	require.Len(t, s.Annotations().Notes, 1)
}

func TestCancelNoteDiscardsCapture(t *testing.T) {
	s, _, _, _ := newSession(t)

	s.EnterNoteMode()
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 0, End: 9}, ""))
	s.CancelNote()

	assert.Empty(t, s.Annotations().Notes)
	assert.Equal(t, ModeRead, s.CurrentMode())

	s.EnterNoteMode()
	_, err := s.SaveNote("stale capture must not survive")
	assert.ErrorIs(t, err, ErrNothingToAnnotate)
}

func TestDeleteAnnotationClearsDecoration(t *testing.T) {
	s, sched, _, _ := newSession(t)

	s.EnterHighlightMode()
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 4, End: 19}, ""))
	sched.fire()

	h := s.Annotations().Highlights[0]
	assert.True(t, s.DeleteAnnotation(annotations.KindHighlight, h.ID))
	sched.fire()

	view := s.View()
	for _, b := range view.Blocks {
		for _, n := range b.Nodes {
			assert.NotEqual(t, rendition.NodeHighlight, n.Kind)
		}
	}
	assert.False(t, s.DeleteAnnotation(annotations.KindHighlight, h.ID), "second delete finds nothing")
}

func TestBookmarkAnchorsCurrentPage(t *testing.T) {
	s, _, _, _ := newSession(t)

	bm, err := s.AddBookmark("chapter start")
	require.NoError(t, err)
	assert.Equal(t, "chapter start", bm.Label)
	assert.True(t, strings.HasPrefix(sessionText, bm.Text))
	require.Len(t, s.Annotations().Bookmarks, 1)
}

func TestReconcileDebounceCoalesces(t *testing.T) {
	s, sched, _, _ := newSession(t)

	s.EnterHighlightMode()
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 0, End: 9}, ""))
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 10, End: 19}, ""))
	require.NoError(t, s.Select(selection.Selection{Block: 0, Start: 20, End: 25}, ""))

	sched.mu.Lock()
	dropped := sched.dropped
	sched.mu.Unlock()
	assert.GreaterOrEqual(t, dropped, 2, "earlier debounce timers cancelled")

	sched.fire()
	require.Len(t, s.Annotations().Highlights, 3)
}

func TestNarrationLifecycle(t *testing.T) {
	s, sched, rec, eng := newSession(t)

	require.NoError(t, s.Play())
	assert.Equal(t, speech.Speaking, s.SpeechState())

	eng.callbacks().OnBoundary(20)
	sched.fire() // speech tick folds the estimate into progress
	p := s.Progress()
	assert.Positive(t, p.Percentage)

	s.PauseSpeech()
	assert.Equal(t, speech.Paused, s.SpeechState())
	s.ResumeSpeech()
	assert.Equal(t, speech.Speaking, s.SpeechState())

	s.StopSpeech()
	assert.Equal(t, speech.Idle, s.SpeechState())

	states := rec.ofType(EventSpeechState)
	assert.GreaterOrEqual(t, len(states), 4)
}

func TestNaturalEndOfNarration(t *testing.T) {
	s, _, _, eng := newSession(t)

	require.NoError(t, s.Play())
	eng.callbacks().OnEnd()

	assert.Equal(t, speech.Idle, s.SpeechState())
	p := s.Progress()
	assert.Equal(t, 100.0, p.Percentage)
}

func TestPlayWithoutDocument(t *testing.T) {
	s := NewSession(Config{Engine: &nullEngine{}, Scheduler: &manualScheduler{}})
	t.Cleanup(s.Close)
	assert.ErrorIs(t, s.Play(), ErrNoDocument)
}

func TestOpenDocumentStopsNarration(t *testing.T) {
	s, _, _, _ := newSession(t)

	require.NoError(t, s.Play())
	require.Equal(t, speech.Speaking, s.SpeechState())

	s.OpenDocument(uuid.New(), "fresh text entirely", 3, annotations.Set{})
	assert.Equal(t, speech.Idle, s.SpeechState())
	assert.Empty(t, s.Annotations().Highlights)
}
