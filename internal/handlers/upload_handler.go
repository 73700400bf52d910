package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"weaver/career-coach/internal/models"
	"weaver/career-coach/internal/repositories"
	"weaver/career-coach/internal/services"
)

type UploadHandler struct {
	coach       services.CoachService
	maxFileSize int64
}

func NewUploadHandler(coach services.CoachService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		coach:       coach,
		maxFileSize: maxFileSize,
	}
}

// HandleResumeUpload handles POST /sessions/:id/documents/resume
func (h *UploadHandler) HandleResumeUpload(c *fiber.Ctx) error {
	return h.handleUpload(c, models.DocTypeResume)
}

// HandleJDUpload handles POST /sessions/:id/documents/job-description
func (h *UploadHandler) HandleJDUpload(c *fiber.Ctx) error {
	return h.handleUpload(c, models.DocTypeJobDescription)
}

func (h *UploadHandler) handleUpload(c *fiber.Ctx, docType string) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Send the document as multipart field 'file'.",
		})
	}

	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	upload := services.Upload{
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
	}

	var session *models.Session
	var skipped bool
	if docType == models.DocTypeResume {
		session, skipped, err = h.coach.AttachResume(c.Context(), sessionID, upload)
	} else {
		session, skipped, err = h.coach.AttachJobDescription(c.Context(), sessionID, upload)
	}
	if err != nil {
		return h.uploadError(c, docType, err)
	}

	response := models.UploadResponse{
		SessionID: session.ID.String(),
		State:     string(session.State),
		DocType:   docType,
		Filename:  fileHeader.Filename,
		Skipped:   skipped,
	}

	if skipped {
		response.Message = "File already processed. Nothing to do."
		return c.JSON(response)
	}

	if docType == models.DocTypeResume {
		response.Message = "Resume processed!"
	} else {
		response.Message = "Job Description processed!"
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *UploadHandler) uploadError(c *fiber.Ctx, docType string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	case errors.Is(err, services.ErrResumeRequired):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"warning": "Please upload your Resume first.",
		})
	case errors.Is(err, services.ErrSuspiciousInput):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Malicious content detected in the %s. Please upload a different file.", docLabel(docType)),
		})
	default:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Error processing %s: %v", docLabel(docType), err),
		})
	}
}

func docLabel(docType string) string {
	if docType == models.DocTypeJobDescription {
		return "job description"
	}
	return "resume"
}
