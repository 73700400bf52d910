package handlers

import (
	"bufio"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/services"
)

type ChatHandler struct {
	coach         services.CoachService
	streamTimeout time.Duration
}

func NewChatHandler(coach services.CoachService, streamTimeout time.Duration) *ChatHandler {
	return &ChatHandler{
		coach:         coach,
		streamTimeout: streamTimeout,
	}
}

// HandleStreamPending handles GET /sessions/:id/stream. It resolves the
// oldest assistant turn still awaiting a response (a resume analysis or JD
// tailoring queued by an upload) and streams it.
func (h *ChatHandler) HandleStreamPending(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	return h.streamSSE(c, sessionID, func(ctx context.Context, sink services.FragmentSink) (string, error) {
		return h.coach.StreamPendingTurn(ctx, sessionID, sink)
	})
}

// HandleMessage handles POST /sessions/:id/messages. The user turn is
// appended and the follow-up answer streams back on the same response.
func (h *ChatHandler) HandleMessage(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	var req models.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return h.streamSSE(c, sessionID, func(ctx context.Context, sink services.FragmentSink) (string, error) {
		return h.coach.StreamFollowUp(ctx, sessionID, req.Message, sink)
	})
}

// HandleBullets handles POST /sessions/:id/bullets, streaming LaTeX-ready
// bullet points rewritten from an accomplishment description.
func (h *ChatHandler) HandleBullets(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	var req models.BulletRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return h.streamSSE(c, sessionID, func(ctx context.Context, sink services.FragmentSink) (string, error) {
		return h.coach.StreamBullets(ctx, sessionID, req.Description, sink)
	})
}

// streamSSE runs one coach call inside an SSE response. Fragments go out as
// chunk events as they arrive; the call ends with either a done event
// carrying the full response or an error event rendered in the chat.
func (h *ChatHandler) streamSSE(c *fiber.Ctx, sessionID uuid.UUID, run func(ctx context.Context, sink services.FragmentSink) (string, error)) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The fiber context is gone once this handler returns, so the
		// stream runs on its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), h.streamTimeout)
		defer cancel()

		response, err := run(ctx, func(fragment string) error {
			return writeSSEChunk(w, fragment)
		})
		if err != nil {
			code, message := sseErrorFor(err)
			writeSSEError(w, code, message)
			return
		}

		writeSSEDone(w, response, sessionID.String())
	}))

	return nil
}
