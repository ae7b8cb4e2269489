package service

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

const openAIEmbeddingMaxInput = 8000

type OpenAIEmbeddingProvider struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewOpenAIEmbeddingProvider creates an embedding provider backed by an
// OpenAI-compatible endpoint.
func NewOpenAIEmbeddingProvider(baseURL, apiKey, model string) *OpenAIEmbeddingProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	embeddingModel := openai.SmallEmbedding3
	if model != "" {
		embeddingModel = openai.EmbeddingModel(model)
	}
	return &OpenAIEmbeddingProvider{
		client: openai.NewClientWithConfig(config),
		model:  embeddingModel,
	}
}

func (p *OpenAIEmbeddingProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	input := normalizeEmbeddingInput(text, openAIEmbeddingMaxInput)
	if input == "" {
		return nil, errors.New("empty text provided for embedding")
	}
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{input},
		Model: p.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
