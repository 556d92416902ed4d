package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

const (
	generativeModel = "gemini-2.5-flash"
	embeddingModel  = "text-embedding-004"

	// EmbeddingDimensions is the vector length of embeddingModel. The Qdrant
	// collection is created with the same size; vectors from other models are
	// not comparable and are rejected at upsert.
	EmbeddingDimensions = 768
)

// GeminiService wraps the Google GenAI client for the two model calls the
// pipeline makes: text embedding and deterministic JSON generation.
type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type geminiService struct {
	client *genai.Client
}

func NewGeminiService(ctx context.Context, apiKey string) (GeminiService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{client: client}, nil
}

// GenerateEmbedding implements GeminiService. One call per document; the
// caller owns any retry policy. Upstream failures carry the upstream message
// under ErrEmbeddingFailed.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateForEmbedding(text)

	result, err := g.client.Models.EmbedContent(ctx, embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrEmbeddingFailed)
	}

	return result.Embeddings[0].Values, nil
}

// GenerateJSON implements GeminiService. Sampling is pinned to temperature 0
// and the response is requested as JSON, so the same document yields the same
// record modulo model nondeterminism outside our control.
func (g *geminiService) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, generativeModel, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// embeddingMaxBytes keeps the embedding input under the model's token cap
// (~10000 tokens).
const embeddingMaxBytes = 40000

// truncateForEmbedding caps the input length, backing the cut up to a rune
// boundary so a multi-byte character is never split into invalid UTF-8.
func truncateForEmbedding(text string) string {
	if len(text) <= embeddingMaxBytes {
		return text
	}

	n := embeddingMaxBytes
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
