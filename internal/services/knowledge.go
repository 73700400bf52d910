package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// GuidelineSnippet is one retrieved piece of reference career advice.
type GuidelineSnippet struct {
	Source string
	Text   string
	Score  float32
}

// KnowledgeService is the vector store of ingested career-guideline chunks
// that augment follow-up answers. Retrieval failures degrade to an empty
// context rather than an error at the call sites.
type KnowledgeService interface {
	InitCollection() error
	UpsertGuideline(ctx context.Context, source, text string, embedding []float32) error
	SearchGuidelines(ctx context.Context, queryEmbedding []float32, limit int) ([]GuidelineSnippet, error)
}

type knowledgeService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewKnowledgeService(urlStr, apiKey, collectionName string) (KnowledgeService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port by default
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &knowledgeService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements KnowledgeService.
func (k *knowledgeService) InitCollection() error {
	ctx := context.Background()

	exists, err := k.client.CollectionExists(ctx, k.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = k.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: k.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     k.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", k.collectionName)
	return nil
}

// UpsertGuideline implements KnowledgeService.
func (k *knowledgeService) UpsertGuideline(ctx context.Context, source, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"source": source,
			"text":   text,
		}),
	}

	_, err := k.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: k.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert guideline: %w", err)
	}
	return nil
}

// SearchGuidelines implements KnowledgeService.
func (k *knowledgeService) SearchGuidelines(ctx context.Context, queryEmbedding []float32, limit int) ([]GuidelineSnippet, error) {
	searchResult, err := k.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: k.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search guidelines: %w", err)
	}

	var snippets []GuidelineSnippet
	for _, point := range searchResult {
		snippet := GuidelineSnippet{Score: point.Score}

		if source, ok := point.Payload["source"]; ok {
			if val, ok := source.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Source = val.StringValue
			}
		}
		if text, ok := point.Payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Text = val.StringValue
			}
		}

		snippets = append(snippets, snippet)
	}
	return snippets, nil
}
