package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/repositories"
	"weaver/career-coach/internal/services"
)

type SessionHandler struct {
	coach services.CoachService
}

func NewSessionHandler(coach services.CoachService) *SessionHandler {
	return &SessionHandler{coach: coach}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	session, err := h.coach.CreateSession(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.NewSessionResponse(session))
}

// HandleGet handles GET /sessions/:id, returning the session state and the
// transcript of every completed turn in order.
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	session, err := h.coach.GetSession(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load session",
		})
	}

	return c.JSON(models.NewSessionResponse(session))
}
