package pipeline

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var openAIEmbeddingDimensions = map[openai.EmbeddingModel]int{
	openai.LargeEmbedding3: 3072,
	openai.SmallEmbedding3: 1536,
	openai.AdaEmbeddingV2:  1536,
}

// OpenAIEmbedder creates an embedder backed by the OpenAI embedding API,
// for deployments that prefer a hosted model over the local one.
// Returns the embed function and the dimension of its vectors.
func OpenAIEmbedder(apiKey string, embeddingModel openai.EmbeddingModel) (EmbedFunc, int, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, 0, fmt.Errorf("openai api key is empty")
	}
	if embeddingModel == "" {
		embeddingModel = openai.SmallEmbedding3
	}

	client := openai.NewClient(apiKey)
	dimensions, ok := openAIEmbeddingDimensions[embeddingModel]
	if !ok {
		dimensions = 1536
	}

	embed := func(text string) ([]float32, error) {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text is empty")
		}

		resp, err := client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{
			Input: []string{text},
			Model: embeddingModel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return resp.Data[0].Embedding, nil
	}

	return embed, dimensions, nil
}
