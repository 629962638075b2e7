package model

import (
	"fmt"
	"strings"
	"time"
)

// RetrievalDepth controls how many results are retained and how far the
// graph traversal reaches
type RetrievalDepth string

const (
	DepthShallow RetrievalDepth = "shallow"
	DepthMedium  RetrievalDepth = "medium"
	DepthDeep    RetrievalDepth = "deep"
)

// TimeRange restricts retrieval to chunks updated within [Start, End]
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SearchScope narrows a retrieval request to specific domains and time ranges
type SearchScope struct {
	IncludeDomains []string   `json:"includeDomains,omitempty"`
	ExcludeDomains []string   `json:"excludeDomains,omitempty"`
	TimeRange      *TimeRange `json:"timeRange,omitempty"`
}

// RetrievalRequest is the inbound request contract. TenantID scopes every
// downstream fetch.
type RetrievalRequest struct {
	QueryContext   string         `json:"queryContext"`
	SearchScope    *SearchScope   `json:"searchScope,omitempty"`
	RetrievalDepth RetrievalDepth `json:"retrievalDepth,omitempty"`
	TenantID       string         `json:"tenantId"`
}

// ValidationError reports a missing or malformed request field. It is
// surfaced immediately, before any external service is invoked.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// Validate checks required fields and normalizes the retrieval depth.
// The default depth is medium.
func (r *RetrievalRequest) Validate() error {
	if strings.TrimSpace(r.QueryContext) == "" {
		return &ValidationError{Field: "queryContext", Reason: "must not be empty"}
	}
	if strings.TrimSpace(r.TenantID) == "" {
		return &ValidationError{Field: "tenantId", Reason: "must not be empty"}
	}
	switch r.RetrievalDepth {
	case "":
		r.RetrievalDepth = DepthMedium
	case DepthShallow, DepthMedium, DepthDeep:
	default:
		return &ValidationError{Field: "retrievalDepth", Reason: fmt.Sprintf("unknown depth %q", r.RetrievalDepth)}
	}
	if r.SearchScope != nil && r.SearchScope.TimeRange != nil {
		tr := r.SearchScope.TimeRange
		if !tr.Start.IsZero() && !tr.End.IsZero() && tr.End.Before(tr.Start) {
			return &ValidationError{Field: "searchScope.timeRange", Reason: "end before start"}
		}
	}
	return nil
}
