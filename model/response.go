package model

import "time"

// SearchStrategy records which signals contributed to a response
type SearchStrategy string

const (
	StrategyHybrid      SearchStrategy = "hybrid"
	StrategyVectorOnly  SearchStrategy = "vector_only"
	StrategyLexicalOnly SearchStrategy = "lexical_only"
	StrategyNone        SearchStrategy = "none"
)

// ResponseMetadata describes how a response was produced
type ResponseMetadata struct {
	TotalChunksSearched  int            `json:"totalChunksSearched"`
	HybridRankingApplied bool           `json:"hybridRankingApplied"`
	SimilarityThreshold  float64        `json:"similarityThreshold"`
	ProcessingTimeMs     int64          `json:"processingTimeMs"`
	SearchStrategy       SearchStrategy `json:"searchStrategy"`
}

// RetrievalResponse is the assembled output of a retrieval request.
// ConfidenceScores is aligned index-for-index with Chunks.
type RetrievalResponse struct {
	Chunks           []*RetrievedChunk    `json:"chunks"`
	Relationships    []*GraphRelationship `json:"relationships"`
	Insights         []*CompetitorInsight `json:"insights"`
	ConfidenceScores []float64            `json:"confidenceScores"`
	Metadata         ResponseMetadata     `json:"metadata"`
}

// EmptyResponse returns the well-formed empty envelope used when the engine
// cannot produce any result. Callers can distinguish "no results" from
// "engine unavailable" by HybridRankingApplied=false plus empty chunk list.
func EmptyResponse(threshold float64, elapsed time.Duration) *RetrievalResponse {
	return &RetrievalResponse{
		Chunks:           []*RetrievedChunk{},
		Relationships:    []*GraphRelationship{},
		Insights:         []*CompetitorInsight{},
		ConfidenceScores: []float64{},
		Metadata: ResponseMetadata{
			TotalChunksSearched:  0,
			HybridRankingApplied: false,
			SimilarityThreshold:  threshold,
			ProcessingTimeMs:     elapsed.Milliseconds(),
			SearchStrategy:       StrategyNone,
		},
	}
}
