// Package reader hosts the reading session: one open document, its
// rendered view, its annotations, its progress and its narration, all
// driven through a single event loop.
//
// Every component the session owns (renderer, annotation store,
// reconciler, tracker, speech controller) is confined to that loop, so
// none of them carry locks. External callers and engine callbacks post
// closures onto the loop; synchronous accessors block until the loop has
// executed them.
package reader

import (
	"context"
	"errors"
	"time"

	"ereader-be/internal/pkg/logger"
	"ereader-be/pkg/anchor"
	"ereader-be/pkg/annotations"
	"ereader-be/pkg/decoration"
	"ereader-be/pkg/progress"
	"ereader-be/pkg/rendition"
	"ereader-be/pkg/selection"
	"ereader-be/pkg/speech"

	"github.com/google/uuid"
)

// reconcileDebounce coalesces bursts of relocation and annotation events
// into one decoration pass.
const reconcileDebounce = 50 * time.Millisecond

// speechTickInterval is how often the estimated narration position is
// folded into reading progress.
const speechTickInterval = time.Second

var (
	ErrNoDocument        = errors.New("no document open in session")
	ErrNotInNoteMode     = errors.New("session is not capturing a note")
	ErrNothingToAnnotate = errors.New("no selection captured")
)

// Mode is the annotation capture mode of the session.
type Mode int

const (
	ModeRead Mode = iota
	ModeHighlight
	ModeNote
)

func (m Mode) String() string {
	switch m {
	case ModeHighlight:
		return "highlight"
	case ModeNote:
		return "note"
	default:
		return "read"
	}
}

// EventType tags the session events delivered to subscribers.
type EventType string

const (
	EventViewUpdated        EventType = "view_updated"
	EventProgress           EventType = "progress"
	EventSpeechState        EventType = "speech_state"
	EventAnnotationsChanged EventType = "annotations_changed"
	EventNoteOpened         EventType = "note_opened"
)

// Event is a session notification. Only the fields relevant to the type
// are populated.
type Event struct {
	Type        EventType
	DocumentID  uuid.UUID
	View        *rendition.View
	Progress    *progress.ReadingProgress
	SpeechState speech.State
	NoteID      uuid.UUID
}

// Listener receives session events on the session loop; it must not
// block.
type Listener func(Event)

// Scheduler defers work. The default implementation is the wall clock;
// tests inject a deterministic one.
type Scheduler interface {
	// AfterFunc runs fn after d on an arbitrary goroutine and returns a
	// cancel function.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Config carries the session's injected dependencies. Zero values get
// working defaults; a nil Engine leaves narration unavailable.
type Config struct {
	Log       logger.ILogger
	Persister annotations.Persister
	Engine    speech.Engine
	Scheduler Scheduler
}

// Session is one user's live reading session.
type Session struct {
	log       logger.ILogger
	scheduler Scheduler

	loop chan func()
	quit chan struct{}

	docID    uuid.UUID
	renderer *rendition.Renderer
	store    *annotations.Store
	rec      *decoration.Reconciler
	tracker  *progress.Tracker
	voice    *speech.Controller

	mode    Mode
	pending *selection.Capture
	seeking bool

	cancelReconcile func()
	cancelTick      func()

	listeners []Listener
}

// NewSession builds and starts a session. Close must be called to stop
// its loop.
func NewSession(cfg Config) *Session {
	if cfg.Scheduler == nil {
		cfg.Scheduler = clockScheduler{}
	}
	s := &Session{
		log:       cfg.Log,
		scheduler: cfg.Scheduler,
		loop:      make(chan func(), 64),
		quit:      make(chan struct{}),
		store:     annotations.NewStore(cfg.Persister),
		rec:       decoration.NewReconciler(cfg.Log),
		tracker:   progress.NewTracker(),
	}
	s.voice = speech.NewController(cfg.Engine, cfg.Log, s.post)
	s.voice.OnStateChange(s.handleSpeechState)
	s.rec.OnNoteActivated(func(id uuid.UUID) {
		s.emit(Event{Type: EventNoteOpened, DocumentID: s.docID, NoteID: id})
	})
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.loop:
			fn()
		case <-s.quit:
			return
		}
	}
}

// Close stops the session loop and cancels narration and pending work.
func (s *Session) Close() {
	s.call(func() {
		s.voice.Stop()
		s.stopTimers()
	})
	close(s.quit)
}

// post schedules fn on the session loop without waiting.
func (s *Session) post(fn func()) {
	select {
	case s.loop <- fn:
	case <-s.quit:
	}
}

// call runs fn on the session loop and waits for it.
func (s *Session) call(fn func()) {
	done := make(chan struct{})
	s.post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
	case <-s.quit:
	}
}

// Subscribe registers an event listener.
func (s *Session) Subscribe(fn Listener) {
	s.call(func() { s.listeners = append(s.listeners, fn) })
}

func (s *Session) emit(ev Event) {
	for _, fn := range s.listeners {
		fn(ev)
	}
}

// OpenDocument loads a document's extracted text and stored annotations
// into the session, replacing whatever was open. Narration and any
// pending decoration pass for the old document are cancelled.
func (s *Session) OpenDocument(docID uuid.UUID, text string, wordCount int, set annotations.Set) {
	s.call(func() {
		s.stopTimers()
		s.voice.SetDocument(text)
		s.mode = ModeRead
		s.pending = nil

		s.docID = docID
		s.renderer = rendition.New(text)
		s.renderer.OnRelocated(s.handleRelocated)
		s.store.SetDocument(docID, set)
		s.tracker.SetDocument(s.renderer.DocLength(), wordCount)

		view := s.renderer.Render()
		s.rec.Reconcile(view, s.store.List())
		s.emit(Event{Type: EventViewUpdated, DocumentID: docID, View: view})
		s.emitProgress()
	})
}

// DocumentID returns the open document id, or uuid.Nil.
func (s *Session) DocumentID() (id uuid.UUID) {
	s.call(func() { id = s.docID })
	return id
}

// View returns the current decorated view, or nil when no document is
// open.
func (s *Session) View() (view *rendition.View) {
	s.call(func() {
		if s.renderer != nil {
			view = s.renderer.CurrentView()
		}
	})
	return view
}

// Annotations returns a snapshot of the open document's annotation sets.
func (s *Session) Annotations() (set annotations.Set) {
	s.call(func() { set = s.store.List() })
	return set
}

// Progress returns the derived reading progress.
func (s *Session) Progress() (p progress.ReadingProgress) {
	s.call(func() { p = s.tracker.Progress() })
	return p
}

// CurrentMode returns the active capture mode.
func (s *Session) CurrentMode() (m Mode) {
	s.call(func() { m = s.mode })
	return m
}

// FontScale returns the current font scale percentage, or 100 with no
// document open.
func (s *Session) FontScale() (pct int) {
	pct = 100
	s.call(func() {
		if s.renderer != nil {
			pct = s.renderer.FontScale()
		}
	})
	return pct
}

// VoiceOptions returns the configured voice profile.
func (s *Session) VoiceOptions() (opts speech.Options) {
	s.call(func() { opts = s.voice.Options() })
	return opts
}

// --- navigation ---

// NextPage turns to the next page. Returns false at the document end or
// with no document open.
func (s *Session) NextPage() (ok bool) {
	s.call(func() {
		if s.renderer != nil {
			ok = s.renderer.NextPage()
		}
	})
	return ok
}

// PrevPage turns to the previous page.
func (s *Session) PrevPage() (ok bool) {
	s.call(func() {
		if s.renderer != nil {
			ok = s.renderer.PrevPage()
		}
	})
	return ok
}

// GoToOffset jumps to the page containing the rune offset.
func (s *Session) GoToOffset(off int) {
	s.call(func() {
		if s.renderer != nil {
			s.seek(func() { s.renderer.DisplayOffset(off) })
		}
	})
}

// seek runs a jump with the relocation handler treating it as an
// explicit seek rather than a page turn. Relocation fires synchronously
// inside the jump, on the session loop.
func (s *Session) seek(jump func()) {
	s.seeking = true
	jump()
	s.seeking = false
}

// GoToPercentage jumps to a document percentage.
func (s *Session) GoToPercentage(pct float64) {
	s.call(func() {
		if s.renderer == nil {
			return
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		off := int(pct / 100 * float64(s.renderer.DocLength()))
		s.seek(func() { s.renderer.DisplayOffset(off) })
	})
}

// SetFontScale reflows the layout at the new scale. Anchored decorations
// are re-resolved against the rebuilt tree on the debounced pass.
func (s *Session) SetFontScale(pct int) {
	s.call(func() {
		if s.renderer != nil {
			s.renderer.SetFontScale(pct)
		}
	})
}

// handleRelocated runs on the session loop for every navigation/reflow.
// While narration is active the speech ticks own the reading position, so
// page turns (including narration-driven ones) only trigger decoration
// work.
func (s *Session) handleRelocated(loc rendition.Location) {
	if s.voice.State() != speech.Speaking {
		if s.seeking {
			s.tracker.OnSeek(loc.Offset, s.renderer.DocLength())
		} else {
			s.tracker.OnNavigate(loc.Offset, s.renderer.DocLength())
		}
	}
	s.scheduleReconcile()
}

// scheduleReconcile coalesces decoration work: rapid page turns or
// annotation bursts produce a single pass once input settles.
func (s *Session) scheduleReconcile() {
	if s.cancelReconcile != nil {
		s.cancelReconcile()
	}
	s.cancelReconcile = s.scheduler.AfterFunc(reconcileDebounce, func() {
		s.post(s.reconcileNow)
	})
}

func (s *Session) reconcileNow() {
	s.cancelReconcile = nil
	if s.renderer == nil {
		return
	}
	view := s.renderer.CurrentView()
	s.rec.Reconcile(view, s.store.List())
	s.emit(Event{Type: EventViewUpdated, DocumentID: s.docID, View: view})
	s.emitProgress()
}

// --- annotation capture ---

// EnterHighlightMode arms highlight capture; the next selection becomes a
// highlight.
func (s *Session) EnterHighlightMode() {
	s.call(func() {
		s.mode = ModeHighlight
		s.pending = nil
	})
}

// EnterNoteMode arms note capture; the next selection is held until
// SaveNote or CancelNote.
func (s *Session) EnterNoteMode() {
	s.call(func() {
		s.mode = ModeNote
		s.pending = nil
	})
}

// ExitMode returns to plain reading, discarding any pending capture.
func (s *Session) ExitMode() {
	s.call(func() {
		s.mode = ModeRead
		s.pending = nil
	})
}

// Select feeds a selection gesture into the active mode. In highlight
// mode a valid selection immediately becomes a highlight; in note mode it
// is held for SaveNote. Invalid selections are dropped silently, matching
// how a viewer ignores empty drags.
func (s *Session) Select(sel selection.Selection, color string) (err error) {
	s.call(func() {
		if s.renderer == nil {
			err = ErrNoDocument
			return
		}
		c := selection.FromView(s.renderer.CurrentView(), sel)
		if c == nil {
			return
		}
		switch s.mode {
		case ModeHighlight:
			s.store.AddHighlight(context.Background(), c.Text, c.Anchor, color)
			s.annotationsChanged()
		case ModeNote:
			s.pending = c
		}
	})
	return err
}

// SaveNote attaches a body to the pending note capture and stores it.
func (s *Session) SaveNote(body string) (note annotations.Note, err error) {
	s.call(func() {
		if s.mode != ModeNote {
			err = ErrNotInNoteMode
			return
		}
		if s.pending == nil {
			err = ErrNothingToAnnotate
			return
		}
		note = s.store.AddNote(context.Background(), s.pending.Text, body, s.pending.Anchor)
		s.pending = nil
		s.mode = ModeRead
		s.annotationsChanged()
	})
	return note, err
}

// CancelNote discards the pending capture and leaves note mode.
func (s *Session) CancelNote() {
	s.ExitMode()
}

// UpdateNote rewrites a stored note's body.
func (s *Session) UpdateNote(id uuid.UUID, body string) (ok bool) {
	s.call(func() {
		ok = s.store.UpdateNote(context.Background(), id, body)
		if ok {
			s.annotationsChanged()
		}
	})
	return ok
}

// DeleteAnnotation removes one annotation; its decoration disappears on
// the next pass.
func (s *Session) DeleteAnnotation(kind annotations.Kind, id uuid.UUID) (ok bool) {
	s.call(func() {
		ok = s.store.Remove(context.Background(), kind, id)
		if ok {
			s.annotationsChanged()
		}
	})
	return ok
}

// AddBookmark marks the current page. The bookmark anchors to the start
// of the page's first block.
func (s *Session) AddBookmark(label string) (bm annotations.Bookmark, err error) {
	s.call(func() {
		if s.renderer == nil {
			err = ErrNoDocument
			return
		}
		view := s.renderer.CurrentView()
		if len(view.Blocks) == 0 {
			err = ErrNothingToAnnotate
			return
		}
		blk := view.Blocks[0]
		end := blk.Len()
		if end > 80 {
			end = 80
		}
		a, aerr := anchor.Encode(view, anchor.Range{Block: blk.Index, Start: 0, End: end})
		if aerr != nil {
			err = aerr
			return
		}
		text := string([]rune(blk.Text())[:end])
		bm = s.store.AddBookmark(context.Background(), text, label, a)
		s.annotationsChanged()
	})
	return bm, err
}

// ActivateNote opens a decorated note marker.
func (s *Session) ActivateNote(id uuid.UUID) {
	s.call(func() { s.rec.Activate(id) })
}

func (s *Session) annotationsChanged() {
	s.emit(Event{Type: EventAnnotationsChanged, DocumentID: s.docID})
	s.scheduleReconcile()
}

// --- narration ---

// ConfigureVoice sets the voice profile for subsequent narration and the
// pace used by time estimates.
func (s *Session) ConfigureVoice(opts speech.Options) {
	s.call(func() {
		s.voice.Configure(opts)
		s.tracker.SetRate(opts.Rate)
	})
}

// Play starts narration from the current reading position.
func (s *Session) Play() error {
	return s.PlayFrom(-1)
}

// PlayFrom starts narration at the given rune offset; a negative offset
// means the current reading position. Starting while already speaking is
// a seek: the active utterance is cancelled and narration restarts at the
// new offset.
func (s *Session) PlayFrom(offset int) (err error) {
	s.call(func() {
		if s.renderer == nil {
			err = ErrNoDocument
			return
		}
		if offset < 0 {
			offset = s.tracker.Position()
		}
		err = s.voice.Speak(context.Background(), offset)
	})
	return err
}

// PauseSpeech suspends narration; a no-op when not speaking.
func (s *Session) PauseSpeech() {
	s.call(func() { s.voice.Pause() })
}

// ResumeSpeech continues paused narration.
func (s *Session) ResumeSpeech() {
	s.call(func() { s.voice.Resume() })
}

// StopSpeech cancels narration, keeping the reading position where it
// stopped.
func (s *Session) StopSpeech() {
	s.call(func() { s.voice.Stop() })
}

// SpeechState returns the narration state.
func (s *Session) SpeechState() (st speech.State) {
	s.call(func() { st = s.voice.State() })
	return st
}

// handleSpeechState runs on the loop for every controller transition.
func (s *Session) handleSpeechState(st speech.State) {
	switch st {
	case speech.Speaking:
		s.tracker.SpeechStarted()
		s.scheduleTick()
	case speech.Paused, speech.Idle:
		s.tracker.SpeechStopped()
		s.tracker.OnSpeechTick(s.voice.EstimatedOffset())
		if s.cancelTick != nil {
			s.cancelTick()
			s.cancelTick = nil
		}
	}
	s.emit(Event{Type: EventSpeechState, DocumentID: s.docID, SpeechState: st})
	s.emitProgress()
}

func (s *Session) scheduleTick() {
	if s.cancelTick != nil {
		s.cancelTick()
	}
	s.cancelTick = s.scheduler.AfterFunc(speechTickInterval, func() {
		s.post(s.speechTick)
	})
}

// speechTick folds the estimated narration offset into progress and turns
// the page when narration crosses the page boundary.
func (s *Session) speechTick() {
	s.cancelTick = nil
	if s.voice.State() != speech.Speaking || s.renderer == nil {
		return
	}
	est := s.voice.EstimatedOffset()
	s.tracker.OnSpeechTick(est)
	if view := s.renderer.CurrentView(); est >= view.PageEnd && view.PageEnd < s.renderer.DocLength() {
		s.renderer.DisplayOffset(est)
	}
	s.emitProgress()
	s.scheduleTick()
}

func (s *Session) emitProgress() {
	p := s.tracker.Progress()
	s.emit(Event{Type: EventProgress, DocumentID: s.docID, Progress: &p})
}

func (s *Session) stopTimers() {
	if s.cancelReconcile != nil {
		s.cancelReconcile()
		s.cancelReconcile = nil
	}
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}
