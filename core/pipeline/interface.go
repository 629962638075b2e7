package pipeline

import "github.com/siherrmann/scout/model"

// EmbedFunc is a function that generates an embedding for text
type EmbedFunc func(text string) ([]float32, error)

// ExtractFunc extracts seed entity names from retrieved chunks.
// Implementations return at most the configured entity limit, deduplicated
// case-insensitively with the first casing kept.
type ExtractFunc func(chunks []*model.RetrievedChunk) ([]string, error)
