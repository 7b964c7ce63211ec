package serverutils

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scaleRequest struct {
	Scale int `json:"scale" validate:"required,min=50,max=200"`
}

func TestValidateRequestPasses(t *testing.T) {
	assert.NoError(t, ValidateRequest(scaleRequest{Scale: 100}))
}

func TestValidateRequestRejectsOutOfRange(t *testing.T) {
	err := ValidateRequest(scaleRequest{Scale: 300})
	require.Error(t, err)

	var fiberErr *fiber.Error
	require.True(t, errors.As(err, &fiberErr))
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)
	assert.Contains(t, fiberErr.Message, "scale")
}

func TestValidateRequestMissingRequired(t *testing.T) {
	err := ValidateRequest(scaleRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
