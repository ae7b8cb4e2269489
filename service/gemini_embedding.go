package service

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiEmbeddingMaxInput = 20000

type GeminiEmbeddingProvider struct {
	client *genai.Client
	model  *genai.EmbeddingModel
}

func NewGeminiEmbeddingProvider(ctx context.Context, apiKey, modelName string) (*GeminiEmbeddingProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "embedding-001"
	}
	return &GeminiEmbeddingProvider{
		client: client,
		model:  client.EmbeddingModel(modelName),
	}, nil
}

func (p *GeminiEmbeddingProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	input := normalizeEmbeddingInput(text, geminiEmbeddingMaxInput)
	if input == "" {
		return nil, errors.New("empty text provided for embedding")
	}
	res, err := p.model.EmbedContent(ctx, genai.Text(input))
	if err != nil {
		return nil, err
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return res.Embedding.Values, nil
}

func (p *GeminiEmbeddingProvider) Close() error {
	return p.client.Close()
}
