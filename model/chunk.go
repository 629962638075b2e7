package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceType classifies the origin of a knowledge chunk
type SourceType string

const (
	SourceTypeBusinessRule      SourceType = "business_rule"
	SourceTypeCompetitiveIntel  SourceType = "competitive_intel"
	SourceTypeHistoricalInsight SourceType = "historical_insight"
	SourceTypeMarketData        SourceType = "market_data"
)

// ChunkMetadata holds the ranking-relevant metadata of a chunk
type ChunkMetadata struct {
	Domain      string    `json:"domain"`
	EntityType  string    `json:"entity_type"`
	Confidence  float64   `json:"confidence"`
	LastUpdated time.Time `json:"last_updated"`
}

// RetrievedChunk represents a unit of retrievable knowledge.
// VectorScore and LexicalScore are normalized to [0,1] by fusion,
// MetadataBoost and RelevanceScore are always computed by fusion and
// never trusted from upstream adapters.
type RetrievedChunk struct {
	ID         uuid.UUID     `json:"id"`
	Text       string        `json:"text"`
	SourceType SourceType    `json:"source_type"`
	Metadata   ChunkMetadata `json:"metadata"`
	Extra      Metadata      `json:"extra,omitempty"`
	Embedding  []float32     `json:"embedding,omitempty"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
	// Scores
	Distance       float64 `json:"distance,omitempty"` // raw cosine distance from vector search
	VectorScore    float64 `json:"vector_score"`
	LexicalScore   float64 `json:"lexical_score"`
	MetadataBoost  float64 `json:"metadata_boost"`
	RelevanceScore float64 `json:"relevance_score"`
}
