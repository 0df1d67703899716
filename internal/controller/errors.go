package controller

import (
	"errors"

	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/benbeisheim/chesscore/internal/service"
	"github.com/benbeisheim/chesscore/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists), errors.Is(err, model.ErrGameFull), errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNotYourTurn), errors.Is(err, model.ErrPlayerNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalMove), errors.Is(err, model.ErrNoPiece), errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrNothingToUndo), errors.Is(err, model.ErrGameOver):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNoArchive):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
