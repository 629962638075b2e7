package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/siherrmann/scout/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRelationshipSource serves relationships from memory, keyed by
// lowercased entity, strongest first like the database handler.
type stubRelationshipSource struct {
	edges    map[string][]*model.GraphRelationship
	failFor  map[string]bool
	fetches  []string
	tenantID string
}

func (s *stubRelationshipSource) SelectRelationshipsForEntity(ctx context.Context, entity string, tenantID string, limit int) ([]*model.GraphRelationship, error) {
	s.fetches = append(s.fetches, entity)
	s.tenantID = tenantID

	key := strings.ToLower(entity)
	if s.failFor[key] {
		return nil, fmt.Errorf("fetch failed for %s", entity)
	}

	edges := s.edges[key]
	if len(edges) > limit {
		edges = edges[:limit]
	}

	// Return copies, the traverser mutates strength and path length
	out := make([]*model.GraphRelationship, 0, len(edges))
	for _, edge := range edges {
		copied := *edge
		out = append(out, &copied)
	}
	return out, nil
}

func edge(source, relType, target string, strength float64) *model.GraphRelationship {
	return &model.GraphRelationship{
		SourceEntity:     source,
		RelationshipType: relType,
		TargetEntity:     target,
		Strength:         strength,
	}
}

func TestTraverseDirect(t *testing.T) {
	source := &stubRelationshipSource{
		edges: map[string][]*model.GraphRelationship{
			"alaska": {
				edge("Alaska", "sells_in", "NCR", 0.9),
				edge("Alaska", "competes_with", "Bear Brand", 0.7),
			},
		},
	}
	traverser := NewTraverser(source, nil)

	t.Run("Direct edges come back with path length one", func(t *testing.T) {
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 1)
		require.NoError(t, err, "Expected Traverse to not return an error")
		require.Len(t, results, 2)
		assert.Equal(t, "NCR", results[0].TargetEntity, "Expected strongest edge first")
		assert.Equal(t, 0.9, results[0].Strength, "Expected no decay on the first hop")
		assert.Equal(t, 1, results[0].PathLength)
		assert.Equal(t, "tenant_a", source.tenantID, "Expected tenant to be passed through")
	})

	t.Run("Unknown seed yields no paths", func(t *testing.T) {
		results, err := traverser.Traverse(context.Background(), []string{"Nonexistent"}, "tenant_a", 2)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("No seeds yields no paths", func(t *testing.T) {
		results, err := traverser.Traverse(context.Background(), nil, "tenant_a", 2)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestTraverseMultiHop(t *testing.T) {
	source := &stubRelationshipSource{
		edges: map[string][]*model.GraphRelationship{
			"alaska": {
				edge("Alaska", "competes_with", "Bear Brand", 0.8),
			},
			"bear brand": {
				edge("Bear Brand", "owned_by", "Nestle", 1.0),
			},
			"nestle": {
				edge("Nestle", "distributes_in", "Luzon", 1.0),
			},
		},
	}

	t.Run("Second hop strength is decayed", func(t *testing.T) {
		traverser := NewTraverser(source, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "Bear Brand", results[0].TargetEntity)
		assert.Equal(t, 0.8, results[0].Strength)

		assert.Equal(t, "Nestle", results[1].TargetEntity)
		assert.InDelta(t, 0.7, results[1].Strength, 1e-9, "Expected one decay step on the second hop")
		assert.Equal(t, 2, results[1].PathLength)
	})

	t.Run("Traversal is bounded by max depth", func(t *testing.T) {
		traverser := NewTraverser(source, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 3)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "Luzon", results[2].TargetEntity)
		assert.InDelta(t, 0.49, results[2].Strength, 1e-9, "Expected two decay steps on the third hop")
		assert.Equal(t, 3, results[2].PathLength)

		results, err = traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2, "Expected no third hop at depth two")
	})

	t.Run("Weak edges are not expanded", func(t *testing.T) {
		weak := &stubRelationshipSource{
			edges: map[string][]*model.GraphRelationship{
				"alaska": {
					edge("Alaska", "competes_with", "Bear Brand", 0.25),
				},
				"bear brand": {
					edge("Bear Brand", "owned_by", "Nestle", 1.0),
				},
			},
		}
		traverser := NewTraverser(weak, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 2)
		require.NoError(t, err)
		require.Len(t, results, 1, "Expected no expansion through an edge below the threshold")
		assert.Equal(t, "Bear Brand", results[0].TargetEntity)
	})
}

func TestTraverseDeduplication(t *testing.T) {
	t.Run("Duplicate triples keep the first discovery", func(t *testing.T) {
		source := &stubRelationshipSource{
			edges: map[string][]*model.GraphRelationship{
				"alaska": {
					edge("Alaska", "competes_with", "Bear Brand", 0.9),
					edge("Bear Brand", "owned_by", "Nestle", 0.6),
				},
				"bear brand": {
					edge("Bear Brand", "owned_by", "Nestle", 1.0),
				},
			},
		}
		traverser := NewTraverser(source, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		for _, rel := range results {
			if rel.TargetEntity == "Nestle" {
				assert.Equal(t, 0.6, rel.Strength, "Expected the first discovered triple to win")
				assert.Equal(t, 1, rel.PathLength)
			}
		}
	})

	t.Run("Cycles do not loop the traversal", func(t *testing.T) {
		source := &stubRelationshipSource{
			edges: map[string][]*model.GraphRelationship{
				"alaska": {
					edge("Alaska", "competes_with", "Bear Brand", 0.9),
				},
				"bear brand": {
					edge("Bear Brand", "competes_with", "Alaska", 0.9),
				},
			},
		}
		traverser := NewTraverser(source, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska"}, "tenant_a", 3)
		require.NoError(t, err)
		assert.Len(t, results, 2, "Expected each triple once despite the cycle")
	})
}

func TestTraverseFailures(t *testing.T) {
	t.Run("Fetch failure skips the entity and continues", func(t *testing.T) {
		source := &stubRelationshipSource{
			edges: map[string][]*model.GraphRelationship{
				"oishi": {
					edge("Oishi", "sells_in", "Mindanao", 0.8),
				},
			},
			failFor: map[string]bool{"alaska": true},
		}
		traverser := NewTraverser(source, nil)
		results, err := traverser.Traverse(context.Background(), []string{"Alaska", "Oishi"}, "tenant_a", 2)
		require.NoError(t, err, "Expected a per-entity failure to not fail the traversal")
		require.Len(t, results, 1)
		assert.Equal(t, "Mindanao", results[0].TargetEntity)
	})
}

func TestTraverseLimits(t *testing.T) {
	t.Run("Results are cut to the path limit", func(t *testing.T) {
		edges := map[string][]*model.GraphRelationship{}
		var seeds []string
		for i := 0; i < 5; i++ {
			seed := fmt.Sprintf("Entity%d", i)
			seeds = append(seeds, seed)
			var list []*model.GraphRelationship
			for j := 0; j < 10; j++ {
				list = append(list, edge(seed, "related_to", fmt.Sprintf("Target%d_%d", i, j), 0.9-float64(j)*0.05))
			}
			edges[strings.ToLower(seed)] = list
		}

		traverser := NewTraverser(&stubRelationshipSource{edges: edges}, nil)
		results, err := traverser.Traverse(context.Background(), seeds, "tenant_a", 1)
		require.NoError(t, err)
		assert.Len(t, results, 20, "Expected the path limit to cap the result")
		for _, rel := range results {
			assert.GreaterOrEqual(t, rel.Strength, 0.7, "Expected only the strongest paths to survive")
		}
	})
}
