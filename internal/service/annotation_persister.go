package service

import (
	"context"
	"encoding/json"

	"ereader-be/internal/dto"
	"ereader-be/internal/pkg/logger"
	"ereader-be/pkg/annotations"

	"github.com/google/uuid"
)

// annotationPersister bridges the in-memory annotation store to the
// persistence queue. Every mutation becomes a PersistAnnotationMessage;
// the session's event loop only pays the cost of a marshal and a channel
// send, the database write happens in the consumer.
type annotationPersister struct {
	publisher IPublisherService
	log       logger.ILogger
}

func NewAnnotationPersister(publisher IPublisherService, log logger.ILogger) annotations.Persister {
	return &annotationPersister{
		publisher: publisher,
		log:       log,
	}
}

func (p *annotationPersister) SaveHighlight(ctx context.Context, h annotations.Highlight) {
	payload := dto.HighlightPayload{
		Anchor:       string(h.Anchor),
		SelectedText: h.Text,
		Color:        h.Color,
		CreatedAt:    h.CreatedAt,
	}
	p.publish(ctx, string(annotations.KindHighlight), dto.PersistOpSave, h.DocumentID, h.ID, payload)
}

func (p *annotationPersister) SaveNote(ctx context.Context, n annotations.Note) {
	payload := dto.NotePayload{
		Anchor:       string(n.Anchor),
		SelectedText: n.SelectedText,
		Body:         n.Body,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
	p.publish(ctx, string(annotations.KindNote), dto.PersistOpSave, n.DocumentID, n.ID, payload)
}

func (p *annotationPersister) SaveBookmark(ctx context.Context, b annotations.Bookmark) {
	payload := dto.BookmarkPayload{
		Anchor:    string(b.Anchor),
		Snippet:   b.Text,
		Label:     b.Label,
		CreatedAt: b.CreatedAt,
	}
	p.publish(ctx, string(annotations.KindBookmark), dto.PersistOpSave, b.DocumentID, b.ID, payload)
}

func (p *annotationPersister) Remove(ctx context.Context, documentID uuid.UUID, kind annotations.Kind, id uuid.UUID) {
	p.publish(ctx, string(kind), dto.PersistOpDelete, documentID, id, nil)
}

func (p *annotationPersister) publish(ctx context.Context, kind, op string, documentID, id uuid.UUID, payload interface{}) {
	msg := dto.PersistAnnotationMessage{
		Kind:       kind,
		Op:         op,
		DocumentId: documentID,
		Id:         id,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			p.log.Error("Persister", "Failed to marshal annotation payload", map[string]interface{}{
				"kind": kind, "id": id, "error": err.Error(),
			})
			return
		}
		msg.Payload = raw
	}

	msgJson, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("Persister", "Failed to marshal persist message", map[string]interface{}{
			"kind": kind, "id": id, "error": err.Error(),
		})
		return
	}

	if err := p.publisher.Publish(ctx, msgJson); err != nil {
		// The in-memory change stands either way; the write just may not
		// survive a restart.
		p.log.Error("Persister", "Failed to enqueue annotation write", map[string]interface{}{
			"kind": kind, "op": op, "id": id, "error": err.Error(),
		})
	}
}
