package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"weaver/career-coach/internal/config"
	"weaver/career-coach/internal/services"
)

// Ingests the reference career-guideline PDFs under ./reference_docs into
// the Qdrant collection used to augment follow-up answers.
func main() {
	log.Println("🚀 Starting guideline ingestion...")

	// Load configuration
	cfg := config.Load()

	if cfg.Gemini.APIKey == "" {
		log.Fatal("❌ GEMINI_API_KEY is required for embedding generation")
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := knowledgeService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()

	ctx := context.Background()

	entries, err := os.ReadDir("./reference_docs")
	if err != nil {
		log.Fatalf("❌ Failed to read reference_docs directory: %v", err)
	}

	successCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join("./reference_docs", entry.Name())
		log.Printf("\n📄 Processing: %s", entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("❌ Failed to read %s: %v", path, err)
			failCount++
			continue
		}

		text, err := pdfParser.ExtractText(data)
		if err != nil {
			log.Printf("❌ Failed to extract text from %s: %v", path, err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(services.CleanText(text), 1000, 100)
		log.Printf("   Split into %d chunks", len(chunks))

		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("❌ Failed to embed chunk %d: %v", i+1, err)
				failCount++
				continue
			}

			if err := knowledgeService.UpsertGuideline(ctx, entry.Name(), chunk, embedding); err != nil {
				log.Printf("❌ Failed to upsert chunk %d: %v", i+1, err)
				failCount++
				continue
			}
			successCount++
		}
	}

	log.Printf("\n✅ Ingestion finished: %d chunks stored, %d failures", successCount, failCount)
}
