// Package gemini provides an embedding model backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/docsift"
	"google.golang.org/genai"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "gemini-embedding-001"

// taskType makes chunks and queries share one embedding space.
const taskType = "SEMANTIC_SIMILARITY"

// Ensure Model implements docsift.EmbeddingModel at compile time.
var _ docsift.EmbeddingModel = (*Model)(nil)

// Model implements docsift.EmbeddingModel using Gemini EmbedContent.
type Model struct {
	client *genai.Client
	name   string
}

// NewModel creates a new Model. An empty name uses DefaultModel.
func NewModel(client *genai.Client, name string) *Model {
	if name == "" {
		name = DefaultModel
	}
	return &Model{client: client, name: name}
}

// Name returns the model name sent to the API.
func (m *Model) Name() string {
	return m.name
}

// Embed returns one vector per input text, in input order.
func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, docsift.Errorf(docsift.EINVALID, "at least one text required")
	}
	if m.client == nil {
		return nil, docsift.Errorf(docsift.EUNAVAILABLE, "gemini client not configured")
	}

	resp, err := m.client.Models.EmbedContent(ctx, m.name, BuildContents(texts), BuildConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil {
		return nil, docsift.Errorf(docsift.EINTERNAL, "gemini returned nil result")
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, docsift.Errorf(docsift.EINTERNAL, "gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, docsift.Errorf(docsift.EINTERNAL, "gemini returned empty embedding at %d", i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// BuildConfig returns the EmbedContentConfig for Gemini API calls.
func BuildConfig() *genai.EmbedContentConfig {
	dim := int32(docsift.EmbeddingDimension)
	return &genai.EmbedContentConfig{
		TaskType:             taskType,
		OutputDimensionality: &dim,
	}
}

// BuildContents wraps each text in its own content.
func BuildContents(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
		}
	}
	return contents
}
