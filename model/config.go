package model

// RetrievalConfig holds all tunable ranking and traversal parameters.
// The defaults reproduce the calibrated production weights; the lexical
// score ceiling in particular is an assumption about the lexical backend
// and should be recalibrated when the backend changes.
type RetrievalConfig struct {
	// Fusion weights (applied to normalized scores)
	VectorWeight  float64 `json:"vector_weight"`
	LexicalWeight float64 `json:"lexical_weight"`
	BoostWeight   float64 `json:"boost_weight"`

	// Metadata boost components
	SourceTypeBoosts map[SourceType]float64 `json:"source_type_boosts"`
	DomainBoost      float64                `json:"domain_boost"`
	EntityTypeBoost  float64                `json:"entity_type_boost"`
	ConfidenceBoost  float64                `json:"confidence_boost"`
	RecencyBoost     float64                `json:"recency_boost"`
	RecencyDecayDays float64                `json:"recency_decay_days"`
	BoostCap         float64                `json:"boost_cap"`

	// Normalization
	LexicalScoreCeiling float64 `json:"lexical_score_ceiling"`
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// Fusion pool
	FusionPoolSize int `json:"fusion_pool_size"`

	// Entity extraction
	MaxEntities int `json:"max_entities"`

	// Graph traversal
	DirectEdgeLimit    int     `json:"direct_edge_limit"`
	ExpansionLimit     int     `json:"expansion_limit"`
	ExpansionThreshold float64 `json:"expansion_threshold"`
	HopDecay           float64 `json:"hop_decay"`
	MaxPaths           int     `json:"max_paths"`

	// Competitive intelligence
	RecordFetchLimit int `json:"record_fetch_limit"`
	MaxInsights      int `json:"max_insights"`
}

// DefaultRetrievalConfig returns the production default configuration
func DefaultRetrievalConfig() *RetrievalConfig {
	return &RetrievalConfig{
		VectorWeight:  0.6,
		LexicalWeight: 0.3,
		BoostWeight:   0.1,
		SourceTypeBoosts: map[SourceType]float64{
			SourceTypeBusinessRule:      0.15,
			SourceTypeCompetitiveIntel:  0.12,
			SourceTypeHistoricalInsight: 0.10,
			SourceTypeMarketData:        0.08,
		},
		DomainBoost:         0.10,
		EntityTypeBoost:     0.08,
		ConfidenceBoost:     0.05,
		RecencyBoost:        0.10,
		RecencyDecayDays:    30,
		BoostCap:            0.5,
		LexicalScoreCeiling: 4.0,
		SimilarityThreshold: 0.7,
		FusionPoolSize:      30,
		MaxEntities:         10,
		DirectEdgeLimit:     10,
		ExpansionLimit:      5,
		ExpansionThreshold:  0.3,
		HopDecay:            0.7,
		MaxPaths:            20,
		RecordFetchLimit:    30,
		MaxInsights:         10,
	}
}

// ResultLimit returns how many fused chunks are retained for a depth
func (c *RetrievalConfig) ResultLimit(depth RetrievalDepth) int {
	switch depth {
	case DepthShallow:
		return 5
	case DepthDeep:
		return 30
	default:
		return 15
	}
}

// MaxHops returns the graph traversal bound for a depth
func (c *RetrievalConfig) MaxHops(depth RetrievalDepth) int {
	if depth == DepthDeep {
		return 3
	}
	return 2
}
