package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ImageTextService is the slice of the model client the extractor needs for
// image uploads.
type ImageTextService interface {
	ExtractImageText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// ExtractorService turns an uploaded file into plain text, dispatching on the
// detected content type: PDFs go through the PDF parser, images through the
// vision endpoint, and everything else is treated as raw UTF-8 text.
type ExtractorService interface {
	ExtractText(ctx context.Context, data []byte, originalName, declaredType string) (string, error)
}

type extractorService struct {
	pdfParser PDFParserService
	imageText ImageTextService
}

func NewExtractorService(pdfParser PDFParserService, imageText ImageTextService) ExtractorService {
	return &extractorService{
		pdfParser: pdfParser,
		imageText: imageText,
	}
}

// ExtractText implements ExtractorService.
func (e *extractorService) ExtractText(ctx context.Context, data []byte, originalName, declaredType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("uploaded file is empty")
	}

	contentType := resolveContentType(data, originalName, declaredType)

	switch {
	case contentType == "application/pdf":
		text, err := e.pdfParser.ExtractText(data)
		if err != nil {
			return "", fmt.Errorf("failed to extract PDF text: %w", err)
		}
		return CleanText(text), nil

	case strings.HasPrefix(contentType, "image/"):
		text, err := e.imageText.ExtractImageText(ctx, data, contentType)
		if err != nil {
			return "", fmt.Errorf("failed to extract image text: %w", err)
		}
		return CleanText(text), nil

	case strings.HasPrefix(contentType, "text/"):
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file is not valid UTF-8 text")
		}
		return CleanText(string(data)), nil

	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// resolveContentType prefers the magic bytes of the payload over the
// client-declared type; the extension is a last resort for the formats the
// sniffer cannot tell apart from plain data.
func resolveContentType(data []byte, originalName, declaredType string) string {
	detected := http.DetectContentType(data)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "text/plain") {
		return trimMediaType(detected)
	}

	if declaredType != "" && declaredType != "application/octet-stream" {
		return trimMediaType(declaredType)
	}

	switch strings.ToLower(filepath.Ext(originalName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain"
	}

	return trimMediaType(detected)
}

func trimMediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
