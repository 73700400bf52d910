package services

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

const ocrPrompt = "Transcribe every piece of text visible in this image, preserving the reading order and line breaks. Return ONLY the transcribed text with no commentary."

// GeminiService wraps the hosted model endpoint. Streaming calls produce a
// lazy, finite, non-restartable sequence of text fragments; failures classify
// as ErrAuth, ErrRateLimited, or ErrNetwork, and ErrMissingAPIKey is returned
// before any call goes out when no key is configured.
type GeminiService interface {
	GenerateStream(ctx context.Context, prompt string, temperature float32) iter.Seq2[string, error]
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	ExtractImageText(ctx context.Context, data []byte, mimeType string) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

// NewGeminiService builds the service. A missing API key is not fatal: the
// service is still constructed and every call reports ErrMissingAPIKey so the
// failure surfaces as a rendered message instead of a crash at boot.
func NewGeminiService(apiKey string) (GeminiService, error) {
	svc := &geminiService{
		modelName:  "gemini-2.5-flash",
		embedModel: "text-embedding-004",
	}

	if apiKey == "" {
		return svc, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	svc.client = client
	return svc, nil
}

// GenerateStream implements GeminiService.
func (g *geminiService) GenerateStream(ctx context.Context, prompt string, temperature float32) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if g.client == nil {
			yield("", ErrMissingAPIKey)
			return
		}

		config := &genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: 4096,
		}

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, genai.Text(prompt), config) {
			if err != nil {
				yield("", classifyModelError(err))
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", classifyModelError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}

// ExtractImageText implements GeminiService. The hosted vision model stands
// in for a local OCR binary on image uploads.
func (g *geminiService) ExtractImageText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, mimeType),
			genai.NewPartFromText(ocrPrompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return "", classifyModelError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text recognized in image")
	}
	return text, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if g.client == nil {
		return nil, ErrMissingAPIKey
	}

	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, classifyModelError(err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return result.Embeddings[0].Values, nil
}
