package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/siherrmann/scout/model"
)

// RelationshipSource defines the interface for fetching direct
// relationships of an entity, strongest first.
type RelationshipSource interface {
	SelectRelationshipsForEntity(ctx context.Context, entity string, tenantID string, limit int) ([]*model.GraphRelationship, error)
}

// Traverser walks the knowledge graph outward from seed entities.
// Relationship strength decays per hop, so a long path never outranks
// a direct edge of the same base strength.
type Traverser struct {
	source RelationshipSource
	config *model.RetrievalConfig
}

// NewTraverser creates a traverser over the given relationship source.
// A nil config falls back to the defaults.
func NewTraverser(source RelationshipSource, config *model.RetrievalConfig) *Traverser {
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}
	return &Traverser{
		source: source,
		config: config,
	}
}

// Traverse performs a breadth-first walk from each seed entity up to
// maxDepth hops. Duplicate triples keep their first discovery, results
// are sorted by decayed strength descending and cut to the path limit.
// A fetch failure for one entity skips that entity, the walk continues.
func (t *Traverser) Traverse(ctx context.Context, seeds []string, tenantID string, maxDepth int) ([]*model.GraphRelationship, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}

	var results []*model.GraphRelationship
	seen := map[string]bool{}

	for _, seed := range seeds {
		visited := map[string]bool{strings.ToLower(seed): true}
		frontier := []string{seed}

		for hop := 1; hop <= maxDepth && len(frontier) > 0; hop++ {
			decay := 1.0
			for i := 1; i < hop; i++ {
				decay *= t.config.HopDecay
			}

			var next []*model.GraphRelationship
			for _, entity := range frontier {
				edges, err := t.source.SelectRelationshipsForEntity(ctx, entity, tenantID, t.config.DirectEdgeLimit)
				if err != nil {
					continue
				}

				for _, edge := range edges {
					key := edge.TripleKey()
					if seen[key] {
						continue
					}
					seen[key] = true

					edge.Strength *= decay
					edge.PathLength = hop
					results = append(results, edge)
					next = append(next, edge)
				}
			}

			if hop == maxDepth {
				break
			}
			frontier = t.expansionTargets(next, visited)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Strength > results[j].Strength
	})

	if len(results) > t.config.MaxPaths {
		results = results[:t.config.MaxPaths]
	}

	return results, nil
}

// expansionTargets picks the strongest unvisited targets above the
// expansion threshold to walk from on the next hop.
func (t *Traverser) expansionTargets(edges []*model.GraphRelationship, visited map[string]bool) []string {
	sorted := make([]*model.GraphRelationship, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Strength > sorted[j].Strength
	})

	var targets []string
	for _, edge := range sorted {
		if len(targets) >= t.config.ExpansionLimit {
			break
		}
		if edge.Strength <= t.config.ExpansionThreshold {
			break
		}
		key := strings.ToLower(edge.TargetEntity)
		if visited[key] {
			continue
		}
		visited[key] = true
		targets = append(targets, edge.TargetEntity)
	}

	return targets
}
