package model

import (
	"time"

	"github.com/google/uuid"
)

// InsightType classifies a competitive-intelligence record
type InsightType string

const (
	InsightTypeMarketShare   InsightType = "market_share"
	InsightTypePricing       InsightType = "pricing"
	InsightTypeProductLaunch InsightType = "product_launch"
	InsightTypePerformance   InsightType = "performance"
)

// CompetitorInsight is a scored competitive record.
// RelevanceToQuery is the fraction of query tokens found in the record text.
type CompetitorInsight struct {
	ID               uuid.UUID   `json:"id,omitempty"`
	Competitor       string      `json:"competitor"`
	InsightType      InsightType `json:"insight_type"`
	Text             string      `json:"text"`
	Confidence       float64     `json:"confidence"`
	Source           string      `json:"source"`
	RelevanceToQuery float64     `json:"relevance_to_query"`
	RecordedAt       time.Time   `json:"recorded_at,omitempty"`
}
