package controller

import (
	"ereader-be/internal/dto"
	"ereader-be/internal/pkg/serverutils"
	"ereader-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReaderController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	View(ctx *fiber.Ctx) error
	Navigate(ctx *fiber.Ctx) error
	SetFontScale(ctx *fiber.Ctx) error
	CreateHighlight(ctx *fiber.Ctx) error
	CreateNote(ctx *fiber.Ctx) error
	UpdateNote(ctx *fiber.Ctx) error
	CreateBookmark(ctx *fiber.Ctx) error
	DeleteAnnotation(ctx *fiber.Ctx) error
	ActivateNote(ctx *fiber.Ctx) error
	Speech(ctx *fiber.Ctx) error
	ConfigureVoice(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	SaveState(ctx *fiber.Ctx) error
}

type readerController struct {
	readerService service.IReaderService
}

func NewReaderController(readerService service.IReaderService) IReaderController {
	return &readerController{
		readerService: readerService,
	}
}

func (c *readerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/reader/v1")
	h.Post("session/document/:documentId", c.Open)
	h.Delete("session/:sessionId", c.Close)
	h.Get("session/:sessionId/view", c.View)
	h.Post("session/:sessionId/navigate", c.Navigate)
	h.Put("session/:sessionId/font-scale", c.SetFontScale)
	h.Post("session/:sessionId/highlight", c.CreateHighlight)
	h.Post("session/:sessionId/note", c.CreateNote)
	h.Put("session/:sessionId/note/:id", c.UpdateNote)
	h.Post("session/:sessionId/note/:id/activate", c.ActivateNote)
	h.Post("session/:sessionId/bookmark", c.CreateBookmark)
	h.Delete("session/:sessionId/annotation/:kind/:id", c.DeleteAnnotation)
	h.Post("session/:sessionId/speech", c.Speech)
	h.Put("session/:sessionId/voice", c.ConfigureVoice)
	h.Get("session/:sessionId/progress", c.Progress)
	h.Post("session/:sessionId/save", c.SaveState)
}

func (c *readerController) Open(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid document id"))
	}

	res, err := c.readerService.Open(ctx.Context(), documentId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success open reading session", res))
}

func (c *readerController) Close(ctx *fiber.Ctx) error {
	if err := c.readerService.CloseSession(ctx.Context(), ctx.Params("sessionId")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close reading session", nil))
}

func (c *readerController) View(ctx *fiber.Ctx) error {
	res, err := c.readerService.View(ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show view", res))
}

func (c *readerController) Navigate(ctx *fiber.Ctx) error {
	var req dto.NavigateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.Navigate(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success navigate", res))
}

func (c *readerController) SetFontScale(ctx *fiber.Ctx) error {
	var req dto.FontScaleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.SetFontScale(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set font scale", res))
}

func (c *readerController) CreateHighlight(ctx *fiber.Ctx) error {
	var req dto.CreateHighlightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.CreateHighlight(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create highlight", res))
}

func (c *readerController) CreateNote(ctx *fiber.Ctx) error {
	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.CreateNote(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *readerController) UpdateNote(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid note id"))
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.readerService.UpdateNote(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *readerController) CreateBookmark(ctx *fiber.Ctx) error {
	var req dto.CreateBookmarkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.CreateBookmark(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create bookmark", res))
}

func (c *readerController) DeleteAnnotation(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid annotation id"))
	}

	if err := c.readerService.DeleteAnnotation(ctx.Params("sessionId"), ctx.Params("kind"), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete annotation", nil))
}

func (c *readerController) ActivateNote(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid note id"))
	}

	if err := c.readerService.ActivateNote(ctx.Params("sessionId"), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success activate note", nil))
}

func (c *readerController) Speech(ctx *fiber.Ctx) error {
	var req dto.SpeechRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.readerService.Speech(ctx.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success speech action", res))
}

func (c *readerController) ConfigureVoice(ctx *fiber.Ctx) error {
	var req dto.VoiceSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if err := c.readerService.ConfigureVoice(ctx.Params("sessionId"), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success configure voice", nil))
}

func (c *readerController) Progress(ctx *fiber.Ctx) error {
	res, err := c.readerService.Progress(ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show progress", res))
}

func (c *readerController) SaveState(ctx *fiber.Ctx) error {
	res, err := c.readerService.SaveState(ctx.Context(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success save reading state", res))
}
