package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ereader-be/internal/dto"
	"ereader-be/internal/entity"
	"ereader-be/internal/pkg/logger"
	"ereader-be/internal/repository/memory"
	"ereader-be/internal/repository/specification"
	"ereader-be/internal/repository/unitofwork"
	"ereader-be/internal/websocket"
	"ereader-be/pkg/annotations"
	"ereader-be/pkg/events"
	pktNats "ereader-be/pkg/nats"
	"ereader-be/pkg/progress"
	"ereader-be/pkg/reader"
	"ereader-be/pkg/rendition"
	"ereader-be/pkg/selection"
	"ereader-be/pkg/speech"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReaderService interface {
	Open(ctx context.Context, documentId uuid.UUID) (*dto.OpenDocumentResponse, error)
	CloseSession(ctx context.Context, sessionId string) error

	View(sessionId string) (*dto.ViewResponse, error)
	Navigate(sessionId string, req *dto.NavigateRequest) (*dto.ViewResponse, error)
	SetFontScale(sessionId string, req *dto.FontScaleRequest) (*dto.ViewResponse, error)

	CreateHighlight(sessionId string, req *dto.CreateHighlightRequest) (*dto.CreateHighlightResponse, error)
	CreateNote(sessionId string, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	UpdateNote(sessionId string, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	CreateBookmark(sessionId string, req *dto.CreateBookmarkRequest) (*dto.CreateBookmarkResponse, error)
	DeleteAnnotation(sessionId string, kind string, id uuid.UUID) error
	ActivateNote(sessionId string, id uuid.UUID) error

	Speech(sessionId string, req *dto.SpeechRequest) (*dto.SpeechResponse, error)
	ConfigureVoice(sessionId string, req *dto.VoiceSettingsRequest) error

	Progress(sessionId string) (*dto.ProgressResponse, error)
	SaveState(ctx context.Context, sessionId string) (*dto.ReadingStateResponse, error)
}

type readerService struct {
	uowFactory        unitofwork.RepositoryFactory
	annotationService IAnnotationService
	registry          *memory.SessionRegistry
	persister         annotations.Persister
	engine            speech.Engine
	hub               *websocket.Hub
	eventPublisher    *pktNats.Publisher
	log               logger.ILogger

	// baselines holds, per session, the lifetime read seconds loaded at
	// open time; SaveState adds the current session stretch on top.
	mu        sync.Mutex
	baselines map[string]int
}

func NewReaderService(
	uowFactory unitofwork.RepositoryFactory,
	annotationService IAnnotationService,
	registry *memory.SessionRegistry,
	persister annotations.Persister,
	engine speech.Engine,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IReaderService {
	return &readerService{
		uowFactory:        uowFactory,
		annotationService: annotationService,
		registry:          registry,
		persister:         persister,
		engine:            engine,
		hub:               hub,
		eventPublisher:    eventPublisher,
		log:               log,
		baselines:         make(map[string]int),
	}
}

// Open loads a document into a new reading session: extracted text,
// stored annotations and the saved resume point all come up together.
func (c *readerService) Open(ctx context.Context, documentId uuid.UUID) (*dto.OpenDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	set, err := c.annotationService.LoadSet(ctx, documentId)
	if err != nil {
		return nil, err
	}

	sessionId := uuid.NewString()
	session := reader.NewSession(reader.Config{
		Log:       c.log,
		Persister: c.persister,
		Engine:    c.engine,
	})

	if c.hub != nil {
		session.Subscribe(c.pushListener(sessionId))
	}

	session.OpenDocument(documentId, doc.Content, doc.WordCount, set)

	state, err := uow.ReadingStateRepository().FindByDocumentId(ctx, documentId)
	if err != nil {
		session.Close()
		return nil, err
	}
	if state != nil {
		if state.FontScale > 0 {
			session.SetFontScale(state.FontScale)
		}
		session.ConfigureVoice(voiceOptions(state.Voice))
		if state.LastPosition > 0 {
			session.GoToOffset(state.LastPosition)
		}
		c.setBaseline(sessionId, state.TimeReadSeconds)
	} else {
		c.setBaseline(sessionId, 0)
	}

	c.registry.Save(sessionId, session)

	c.log.Info("Reader", "Session opened", map[string]interface{}{
		"session_id": sessionId, "document_id": documentId,
	})

	if c.eventPublisher != nil {
		evt := events.NewSessionOpened(sessionId, documentId)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish SESSION_OPENED event: %v\n", err)
		}
	}

	return &dto.OpenDocumentResponse{
		SessionId:  sessionId,
		DocumentId: documentId,
		View:       *toViewResponse(session.View()),
	}, nil
}

// CloseSession saves the resume point and shuts the session down.
func (c *readerService) CloseSession(ctx context.Context, sessionId string) error {
	if _, found := c.registry.Get(sessionId); !found {
		return fiber.NewError(fiber.StatusNotFound, "Session not found or expired")
	}
	if _, err := c.SaveState(ctx, sessionId); err != nil {
		return err
	}
	c.registry.Delete(sessionId) // eviction hook closes the session
	c.mu.Lock()
	delete(c.baselines, sessionId)
	c.mu.Unlock()
	return nil
}

func (c *readerService) View(sessionId string) (*dto.ViewResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}
	return toViewResponse(session.View()), nil
}

func (c *readerService) Navigate(sessionId string, req *dto.NavigateRequest) (*dto.ViewResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Direction == "next":
		session.NextPage()
	case req.Direction == "prev":
		session.PrevPage()
	case req.Offset != nil:
		session.GoToOffset(*req.Offset)
	case req.Percentage != nil:
		session.GoToPercentage(*req.Percentage)
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Navigation needs a direction, offset or percentage")
	}

	return toViewResponse(session.View()), nil
}

func (c *readerService) SetFontScale(sessionId string, req *dto.FontScaleRequest) (*dto.ViewResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}
	session.SetFontScale(req.Scale)
	return toViewResponse(session.View()), nil
}

func (c *readerService) CreateHighlight(sessionId string, req *dto.CreateHighlightRequest) (*dto.CreateHighlightResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}

	before := len(session.Annotations().Highlights)

	session.EnterHighlightMode()
	defer session.ExitMode()
	if err := session.Select(toSelection(req.Selection), req.Color); err != nil {
		return nil, err
	}

	set := session.Annotations()
	if len(set.Highlights) == before {
		// The selection was empty, whitespace-only or out of bounds
		return nil, fiber.NewError(fiber.StatusBadRequest, "Selection could not be anchored")
	}
	created := set.Highlights[len(set.Highlights)-1]

	return &dto.CreateHighlightResponse{Id: created.ID}, nil
}

func (c *readerService) CreateNote(sessionId string, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}

	session.EnterNoteMode()
	if err := session.Select(toSelection(req.Selection), ""); err != nil {
		session.CancelNote()
		return nil, err
	}

	note, err := session.SaveNote(req.Body)
	if err != nil {
		session.CancelNote()
		if err == reader.ErrNothingToAnnotate {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Selection could not be anchored")
		}
		return nil, err
	}

	return &dto.CreateNoteResponse{Id: note.ID}, nil
}

func (c *readerService) UpdateNote(sessionId string, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}
	if !session.UpdateNote(req.Id, req.Body) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Note not found")
	}
	return &dto.UpdateNoteResponse{Id: req.Id}, nil
}

func (c *readerService) CreateBookmark(sessionId string, req *dto.CreateBookmarkRequest) (*dto.CreateBookmarkResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}
	bm, err := session.AddBookmark(req.Label)
	if err != nil {
		return nil, err
	}
	return &dto.CreateBookmarkResponse{Id: bm.ID}, nil
}

func (c *readerService) DeleteAnnotation(sessionId string, kind string, id uuid.UUID) error {
	session, err := c.getSession(sessionId)
	if err != nil {
		return err
	}

	k := annotations.Kind(kind)
	switch k {
	case annotations.KindHighlight, annotations.KindNote, annotations.KindBookmark:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "Unknown annotation kind")
	}

	if !session.DeleteAnnotation(k, id) {
		return fiber.NewError(fiber.StatusNotFound, "Annotation not found")
	}
	return nil
}

func (c *readerService) ActivateNote(sessionId string, id uuid.UUID) error {
	session, err := c.getSession(sessionId)
	if err != nil {
		return err
	}
	session.ActivateNote(id)
	return nil
}

func (c *readerService) Speech(sessionId string, req *dto.SpeechRequest) (*dto.SpeechResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "play":
		err = session.Play()
	case "seek":
		if req.Offset == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Seek needs an offset")
		}
		err = session.PlayFrom(*req.Offset)
	case "pause":
		session.PauseSpeech()
	case "resume":
		session.ResumeSpeech()
	case "stop":
		session.StopSpeech()
	}
	if err != nil {
		if err == speech.ErrEngineUnavailable {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "No speech engine available")
		}
		return nil, err
	}

	p := session.Progress()
	return &dto.SpeechResponse{
		State:    session.SpeechState().String(),
		Position: p.CurrentPosition,
	}, nil
}

func (c *readerService) ConfigureVoice(sessionId string, req *dto.VoiceSettingsRequest) error {
	session, err := c.getSession(sessionId)
	if err != nil {
		return err
	}

	opts := speech.DefaultOptions()
	opts.Voice = req.Voice
	if req.Rate > 0 {
		opts.Rate = req.Rate
	}
	if req.Pitch > 0 {
		opts.Pitch = req.Pitch
	}
	if req.Volume > 0 {
		opts.Volume = req.Volume
	}
	session.ConfigureVoice(opts)
	return nil
}

func (c *readerService) Progress(sessionId string) (*dto.ProgressResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}
	return toProgressResponse(session.Progress()), nil
}

// SaveState writes the resume point: position, percentage, cumulative
// read time, font scale and voice profile, one upserted row per document.
func (c *readerService) SaveState(ctx context.Context, sessionId string) (*dto.ReadingStateResponse, error) {
	session, err := c.getSession(sessionId)
	if err != nil {
		return nil, err
	}

	documentId := session.DocumentID()
	if documentId == uuid.Nil {
		return nil, reader.ErrNoDocument
	}

	p := session.Progress()
	opts := session.VoiceOptions()

	state := &entity.ReadingState{
		Id:              uuid.New(),
		DocumentId:      documentId,
		LastPosition:    p.CurrentPosition,
		Percentage:      p.Percentage,
		TimeReadSeconds: c.baseline(sessionId) + int(p.TimeReadMinutes*60),
		FontScale:       session.FontScale(),
		Voice: entity.VoiceSettings{
			Voice:  opts.Voice,
			Rate:   opts.Rate,
			Pitch:  opts.Pitch,
			Volume: opts.Volume,
		},
		UpdatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ReadingStateRepository().Upsert(ctx, state); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.NewProgressSaved(documentId, state.LastPosition, state.Percentage)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish PROGRESS_SAVED event: %v\n", err)
		}
	}

	return &dto.ReadingStateResponse{
		DocumentId:      documentId,
		LastPosition:    state.LastPosition,
		Percentage:      state.Percentage,
		TimeReadSeconds: state.TimeReadSeconds,
		FontScale:       state.FontScale,
		Voice: dto.VoiceSettingsRequest{
			Voice:  state.Voice.Voice,
			Rate:   state.Voice.Rate,
			Pitch:  state.Voice.Pitch,
			Volume: state.Voice.Volume,
		},
	}, nil
}

func (c *readerService) setBaseline(sessionId string, seconds int) {
	c.mu.Lock()
	c.baselines[sessionId] = seconds
	c.mu.Unlock()
}

func (c *readerService) baseline(sessionId string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baselines[sessionId]
}

func (c *readerService) getSession(sessionId string) (*reader.Session, error) {
	session, found := c.registry.Get(sessionId)
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found or expired")
	}
	c.registry.Touch(sessionId)
	return session, nil
}

// pushListener forwards session events to websocket viewers. It runs on
// the session loop, so it only marshals and hands off to buffered
// channels.
func (c *readerService) pushListener(sessionId string) reader.Listener {
	return func(ev reader.Event) {
		switch ev.Type {
		case reader.EventViewUpdated:
			c.hub.Send(sessionId, string(ev.Type), toViewResponse(ev.View))
		case reader.EventProgress:
			if ev.Progress != nil {
				c.hub.Send(sessionId, string(ev.Type), toProgressResponse(*ev.Progress))
			}
		case reader.EventSpeechState:
			c.hub.Send(sessionId, string(ev.Type), map[string]interface{}{
				"state": ev.SpeechState.String(),
			})
		case reader.EventAnnotationsChanged:
			c.hub.Send(sessionId, string(ev.Type), map[string]interface{}{
				"document_id": ev.DocumentID,
			})
		case reader.EventNoteOpened:
			c.hub.Send(sessionId, string(ev.Type), map[string]interface{}{
				"note_id": ev.NoteID,
			})
		}
	}
}

func toSelection(req dto.SelectionRequest) selection.Selection {
	return selection.Selection{
		Block: req.Block,
		Start: req.Start,
		End:   req.End,
	}
}

func toProgressResponse(p progress.ReadingProgress) *dto.ProgressResponse {
	return &dto.ProgressResponse{
		CurrentPosition:      p.CurrentPosition,
		TotalLength:          p.TotalLength,
		Percentage:           p.Percentage,
		TimeReadMinutes:      p.TimeReadMinutes,
		TimeRemainingMinutes: p.TimeRemainingMinutes,
	}
}

func toViewResponse(view *rendition.View) *dto.ViewResponse {
	if view == nil {
		return &dto.ViewResponse{}
	}

	res := &dto.ViewResponse{
		Generation: view.Generation,
		PageStart:  view.PageStart,
		PageEnd:    view.PageEnd,
		DocLength:  view.DocLength,
		Blocks:     make([]dto.BlockResponse, 0, len(view.Blocks)),
	}
	for _, blk := range view.Blocks {
		b := dto.BlockResponse{
			Index:  blk.Index,
			Offset: blk.Offset,
			Nodes:  make([]dto.NodeResponse, 0, len(blk.Nodes)),
		}
		for _, n := range blk.Nodes {
			b.Nodes = append(b.Nodes, dto.NodeResponse{
				Kind:         nodeKindString(n.Kind),
				Text:         n.Text,
				DecorationId: n.DecorationID,
				Color:        n.Color,
				Preview:      n.Preview,
			})
		}
		res.Blocks = append(res.Blocks, b)
	}
	return res
}

func nodeKindString(k rendition.NodeKind) string {
	switch k {
	case rendition.NodeHighlight:
		return "highlight"
	case rendition.NodeNoteMarker:
		return "note_marker"
	default:
		return "text"
	}
}

func voiceOptions(v entity.VoiceSettings) speech.Options {
	opts := speech.DefaultOptions()
	opts.Voice = v.Voice
	if v.Rate > 0 {
		opts.Rate = v.Rate
	}
	if v.Pitch > 0 {
		opts.Pitch = v.Pitch
	}
	if v.Volume > 0 {
		opts.Volume = v.Volume
	}
	return opts
}
