package fusion

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/scout/model"
)

// Fuser merges vector and lexical search results into a single ranking.
// Both signals are normalized to [0,1] before the weighted combination,
// a chunk found by only one signal keeps a zero score on the other.
type Fuser struct {
	config *model.RetrievalConfig
}

// NewFuser creates a fuser with the given config.
// A nil config falls back to the defaults.
func NewFuser(config *model.RetrievalConfig) *Fuser {
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}
	return &Fuser{config: config}
}

// Fuse merges the two result sets by chunk ID, scores every chunk and
// returns the ranking cut to the depth's result limit. Input order is
// preserved for equal scores, vector results before lexical-only ones.
// Either input may be empty.
func (f *Fuser) Fuse(vectorResults []*model.RetrievedChunk, lexicalResults []*model.RetrievedChunk, query string, depth model.RetrievalDepth) []*model.RetrievedChunk {
	merged := make([]*model.RetrievedChunk, 0, len(vectorResults)+len(lexicalResults))
	byID := make(map[uuid.UUID]*model.RetrievedChunk, len(vectorResults))

	for _, chunk := range vectorResults {
		chunk.VectorScore = clamp01(1 - chunk.Distance)
		byID[chunk.ID] = chunk
		merged = append(merged, chunk)
	}

	for _, chunk := range lexicalResults {
		if existing, ok := byID[chunk.ID]; ok {
			existing.LexicalScore = chunk.LexicalScore
			continue
		}
		chunk.VectorScore = 0
		merged = append(merged, chunk)
	}

	for _, chunk := range merged {
		chunk.LexicalScore = clamp01(chunk.LexicalScore / f.config.LexicalScoreCeiling)
		chunk.MetadataBoost = f.metadataBoost(chunk, query)
		chunk.RelevanceScore = clamp01(
			f.config.VectorWeight*chunk.VectorScore +
				f.config.LexicalWeight*chunk.LexicalScore +
				f.config.BoostWeight*chunk.MetadataBoost,
		)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	if len(merged) > f.config.FusionPoolSize {
		merged = merged[:f.config.FusionPoolSize]
	}

	limit := f.config.ResultLimit(depth)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged
}

// metadataBoost scores a chunk's metadata against the query.
// The sum of all components is capped, so a chunk cannot ride on
// metadata alone.
func (f *Fuser) metadataBoost(chunk *model.RetrievedChunk, query string) float64 {
	queryLower := strings.ToLower(query)

	boost := f.config.SourceTypeBoosts[chunk.SourceType]

	if domain := strings.ToLower(chunk.Metadata.Domain); domain != "" && strings.Contains(queryLower, domain) {
		boost += f.config.DomainBoost
	}
	if entityType := strings.ToLower(chunk.Metadata.EntityType); entityType != "" && strings.Contains(queryLower, entityType) {
		boost += f.config.EntityTypeBoost
	}

	boost += clamp01(chunk.Metadata.Confidence) * f.config.ConfidenceBoost

	if !chunk.Metadata.LastUpdated.IsZero() {
		days := time.Since(chunk.Metadata.LastUpdated).Hours() / 24
		if days < 0 {
			days = 0
		}
		boost += f.config.RecencyBoost * math.Exp(-days/f.config.RecencyDecayDays)
	}

	if boost > f.config.BoostCap {
		boost = f.config.BoostCap
	}
	if boost < 0 {
		boost = 0
	}

	return boost
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
