package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ereader-be/internal/dto"
	"ereader-be/internal/entity"
	"ereader-be/internal/repository/specification"
	"ereader-be/internal/repository/unitofwork"
	"ereader-be/pkg/events"
	"ereader-be/pkg/extract"
	pktNats "ereader-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IDocumentService interface {
	Upload(ctx context.Context, filename string, data []byte) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, search, format string) (*dto.ListDocumentsResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Content(ctx context.Context, id uuid.UUID) (*dto.DocumentContentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	contentCache   *cache.Cache
	maxSizeBytes   int64
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	maxSizeMB int,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		contentCache:   cache.New(10*time.Minute, 15*time.Minute),
		maxSizeBytes:   int64(maxSizeMB) * 1024 * 1024,
	}
}

func (c *documentService) Upload(ctx context.Context, filename string, data []byte) (*dto.UploadDocumentResponse, error) {
	if int64(len(data)) > c.maxSizeBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB upload limit", c.maxSizeBytes/(1024*1024)))
	}

	res, err := extract.Extract(filename, data)
	if err != nil {
		return nil, err
	}

	doc := entity.Document{
		Id:        uuid.New(),
		Title:     titleFromFilename(filename),
		Filename:  filename,
		Format:    formatFromFilename(filename),
		Content:   res.Text,
		WordCount: res.WordCount,
		CharCount: res.CharCount,
		CreatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.NewDocumentUploaded(doc.Id, doc.Title, doc.Format, doc.WordCount)
		// The library keeps working if the event bus is down
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_UPLOADED event: %v\n", err)
		}
	}

	return &dto.UploadDocumentResponse{
		Id:        doc.Id,
		Title:     doc.Title,
		Format:    doc.Format,
		WordCount: doc.WordCount,
		CharCount: doc.CharCount,
	}, nil
}

func (c *documentService) List(ctx context.Context, search, format string) (*dto.ListDocumentsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.WithoutContent{},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if search != "" {
		specs = append(specs, specification.TitleContains{Needle: search})
	}
	if format != "" {
		specs = append(specs, specification.ByFormat{Format: format})
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summary := dto.DocumentSummary{
			Id:        doc.Id,
			Title:     doc.Title,
			Format:    doc.Format,
			WordCount: doc.WordCount,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		}

		state, err := uow.ReadingStateRepository().FindByDocumentId(ctx, doc.Id)
		if err != nil {
			return nil, err
		}
		if state != nil {
			summary.Percentage = state.Percentage
		}

		summaries = append(summaries, summary)
	}

	return &dto.ListDocumentsResponse{Documents: summaries}, nil
}

func (c *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	return &dto.ShowDocumentResponse{
		Id:        doc.Id,
		Title:     doc.Title,
		Format:    doc.Format,
		Content:   doc.Content,
		WordCount: doc.WordCount,
		CharCount: doc.CharCount,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Content serves the canonical text on its own, cached because the
// reader re-fetches it on every session open.
func (c *documentService) Content(ctx context.Context, id uuid.UUID) (*dto.DocumentContentResponse, error) {
	if cached, ok := c.contentCache.Get(id.String()); ok {
		return &dto.DocumentContentResponse{Id: id, Content: cached.(string)}, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	c.contentCache.Set(id.String(), doc.Content, cache.DefaultExpiration)

	return &dto.DocumentContentResponse{Id: id, Content: doc.Content}, nil
}

// Delete removes the document together with everything hanging off it:
// annotations, the resume point. One transaction, no orphans.
func (c *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.HighlightRepository().DeleteAllByDocumentIdUnscoped(ctx, id); err != nil {
		return err
	}
	if err := uow.NoteRepository().DeleteAllByDocumentIdUnscoped(ctx, id); err != nil {
		return err
	}
	if err := uow.BookmarkRepository().DeleteAllByDocumentIdUnscoped(ctx, id); err != nil {
		return err
	}
	if err := uow.ReadingStateRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.contentCache.Delete(id.String())

	if c.eventPublisher != nil {
		evt := events.NewDocumentDeleted(id)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish DOCUMENT_DELETED event: %v\n", err)
		}
	}

	return nil
}

func titleFromFilename(filename string) string {
	base := filename
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}

func formatFromFilename(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return strings.ToLower(filename[i+1:])
	}
	return ""
}
