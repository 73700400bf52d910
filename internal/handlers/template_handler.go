package handlers

import (
	"github.com/gofiber/fiber/v2"

	"weaver/career-coach/internal/services"
)

type TemplateHandler struct{}

func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// HandleGetLatexTemplate handles GET /template/latex, serving the classic
// resume template verbatim for copy-paste.
func (h *TemplateHandler) HandleGetLatexTemplate(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(services.ClassicResumeTemplate())
}
