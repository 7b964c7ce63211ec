package controller

import (
	"ereader-be/internal/pkg/serverutils"
	"ereader-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnnotationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

// annotationController serves the stored annotations of a document for
// clients browsing the library without an open session.
type annotationController struct {
	annotationService service.IAnnotationService
}

func NewAnnotationController(annotationService service.IAnnotationService) IAnnotationController {
	return &annotationController{
		annotationService: annotationService,
	}
}

func (c *annotationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/annotation/v1")
	h.Get("document/:documentId", c.List)
}

func (c *annotationController) List(ctx *fiber.Ctx) error {
	documentId, err := uuid.Parse(ctx.Params("documentId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid document id"))
	}

	res, err := c.annotationService.List(ctx.Context(), documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list annotations", res))
}
