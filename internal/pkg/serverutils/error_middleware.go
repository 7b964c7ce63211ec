package serverutils

import (
	"errors"

	"ereader-be/pkg/anchor"
	"ereader-be/pkg/extract"
	"ereader-be/pkg/reader"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandlerMiddleware converts errors bubbling out of controllers into
// consistent JSON error envelopes. Domain errors from the reader engine get
// mapped to proper status codes so clients can distinguish retryable
// conditions (anchor not resolved yet) from real failures.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.Is(err, extract.ErrUnsupportedFormat):
			code = fiber.StatusUnprocessableEntity
		case errors.Is(err, gorm.ErrRecordNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, anchor.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, reader.ErrNoDocument):
			code = fiber.StatusConflict
		case errors.Is(err, reader.ErrNotInNoteMode):
			code = fiber.StatusConflict
		case errors.Is(err, reader.ErrNothingToAnnotate):
			code = fiber.StatusBadRequest
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
