package service

import (
	"context"
	"encoding/json"
	"log"

	"ereader-be/internal/dto"
	"ereader-be/internal/entity"
	"ereader-be/internal/repository/specification"
	"ereader-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the annotation persistence queue and applies each
// message to the database. Sessions publish fire-and-forget; this worker is
// the only writer for annotation tables.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistAnnotationMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal persist message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	var applyErr error
	switch payload.Op {
	case dto.PersistOpSave:
		applyErr = cs.applySave(ctx, uow, &payload)
	case dto.PersistOpDelete:
		applyErr = cs.applyDelete(ctx, uow, &payload)
	default:
		log.Printf("[ERROR] Unknown persist op %q for %s %s", payload.Op, payload.Kind, payload.Id)
		msg.Ack()
		return
	}

	if applyErr != nil {
		log.Printf("[ERROR] Failed to persist %s %s (%s): %v", payload.Kind, payload.Id, payload.Op, applyErr)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}

func (cs *consumerService) applySave(ctx context.Context, uow unitofwork.UnitOfWork, m *dto.PersistAnnotationMessage) error {
	switch m.Kind {
	case "highlight":
		var p dto.HighlightPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return err
		}
		return uow.HighlightRepository().Create(ctx, &entity.Highlight{
			Id:           m.Id,
			DocumentId:   m.DocumentId,
			Anchor:       p.Anchor,
			SelectedText: p.SelectedText,
			Color:        p.Color,
			CreatedAt:    p.CreatedAt,
		})

	case "note":
		var p dto.NotePayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return err
		}
		note := &entity.Note{
			Id:           m.Id,
			DocumentId:   m.DocumentId,
			Anchor:       p.Anchor,
			SelectedText: p.SelectedText,
			Body:         p.Body,
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
		// A note save is either the first write or a body edit; check
		// which before touching the table.
		existing, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: m.Id})
		if err != nil {
			return err
		}
		if existing == nil {
			return uow.NoteRepository().Create(ctx, note)
		}
		return uow.NoteRepository().Update(ctx, note)

	case "bookmark":
		var p dto.BookmarkPayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return err
		}
		return uow.BookmarkRepository().Create(ctx, &entity.Bookmark{
			Id:         m.Id,
			DocumentId: m.DocumentId,
			Anchor:     p.Anchor,
			Snippet:    p.Snippet,
			Label:      p.Label,
			CreatedAt:  p.CreatedAt,
		})
	}

	log.Printf("[ERROR] Unknown annotation kind %q for %s", m.Kind, m.Id)
	return nil // Ack: retrying cannot fix an unknown kind
}

func (cs *consumerService) applyDelete(ctx context.Context, uow unitofwork.UnitOfWork, m *dto.PersistAnnotationMessage) error {
	switch m.Kind {
	case "highlight":
		return uow.HighlightRepository().Delete(ctx, m.Id)
	case "note":
		return uow.NoteRepository().Delete(ctx, m.Id)
	case "bookmark":
		return uow.BookmarkRepository().Delete(ctx, m.Id)
	}

	log.Printf("[ERROR] Unknown annotation kind %q for %s", m.Kind, m.Id)
	return nil
}
