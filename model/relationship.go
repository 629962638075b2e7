package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GraphRelationship represents an edge discovered during graph traversal.
// Strength decays multiplicatively per hop away from the seed entity,
// PathLength is the hop count from the seed (1 = direct).
type GraphRelationship struct {
	ID               uuid.UUID `json:"id,omitempty"`
	SourceEntity     string    `json:"source_entity"`
	TargetEntity     string    `json:"target_entity"`
	RelationshipType string    `json:"relationship_type"`
	Strength         float64   `json:"strength"`
	PathLength       int       `json:"path_length"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// TripleKey returns the case-insensitive deduplication key for the
// (source, type, target) triple. No result set contains the same key twice.
func (r *GraphRelationship) TripleKey() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s", r.SourceEntity, r.RelationshipType, r.TargetEntity))
}
