package retrieval

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Relation weights used for graph scoring. Hierarchical edges carry the
// highest trust; tag edges the lowest.
var relationWeights = map[travel.RelationType]float64{
	travel.RelationLocatedIn:   1.0,
	travel.RelationInRegion:    1.0,
	travel.RelationConnectedTo: 0.8,
	travel.RelationSameCity:    0.7,
	travel.RelationSimilarTags: 0.5,
	travel.RelationHasTag:      0.3,
}

// Enricher expands a set of vector seeds through the relationship graph.
type Enricher struct {
	graph store.GraphStore
}

// NewEnricher creates an enricher over the given graph store.
func NewEnricher(graph store.GraphStore) *Enricher {
	return &Enricher{graph: graph}
}

// candidate is one edge considered during a traversal hop.
type candidate struct {
	node     travel.Item
	relation travel.RelationType
	weight   float64
	seed     string
}

// Enrich runs a breadth-first traversal from the seed set, hop distance
// 1..maxHops, collecting related non-seed items as graph hits.
//
// Each node's score is base_weight(relation)/hop; a node reached over
// multiple paths keeps the maximum score and the shortest hop distance.
// Tag pseudo-items are hopped through within the same hop at HAS_TAG
// weight and are never emitted. maxPerHop caps newly discovered nodes per
// hop. Results are ordered by score descending, then hop ascending, then
// item id ascending.
//
// A graph backend failure yields an empty result and the degraded flag.
func (e *Enricher) Enrich(
	ctx context.Context,
	seedIDs []string,
	maxHops int,
	maxPerHop int,
) ([]travel.RetrievalHit, bool) {
	if len(seedIDs) == 0 || maxHops <= 0 || maxPerHop <= 0 {
		return nil, false
	}

	seeds := make(map[string]bool, len(seedIDs))
	frontier := make([]frontierNode, 0, len(seedIDs))
	for _, id := range seedIDs {
		if id == "" || seeds[id] {
			continue
		}
		seeds[id] = true
		frontier = append(frontier, frontierNode{id: id, seed: id})
	}
	sort.Slice(frontier, func(i, j int) bool { return frontier[i].id < frontier[j].id })

	// best doubles as the visited set for non-seed nodes; SAME_CITY and
	// SIMILAR_TAGS edges form cycles, so membership here guarantees
	// termination.
	best := make(map[string]travel.RetrievalHit)

	for hop := 1; hop <= maxHops; hop++ {
		candidates, err := e.expand(ctx, frontier)
		if err != nil {
			logger.Error("graph neighbor lookup failed", "error", err, "hop", hop)
			return nil, true
		}

		frontier = frontier[:0]
		discovered := 0
		for _, cand := range candidates {
			id := cand.node.ID
			if seeds[id] {
				continue
			}

			score := cand.weight / float64(hop)
			if hit, ok := best[id]; ok {
				// Closer, stronger relation wins.
				changed := false
				if score > hit.Score {
					hit.Score = score
					hit.Relation = cand.relation
					hit.Seed = cand.seed
					changed = true
				}
				if hop < hit.Hops {
					hit.Hops = hop
					changed = true
				}
				if changed {
					best[id] = hit
				}
				continue
			}

			if discovered >= maxPerHop {
				continue
			}
			discovered++
			best[id] = travel.RetrievalHit{
				Item:     cand.node,
				Score:    score,
				Origin:   travel.OriginGraph,
				Hops:     hop,
				Seed:     cand.seed,
				Relation: cand.relation,
			}
			frontier = append(frontier, frontierNode{id: id, seed: cand.seed})
		}
	}

	hits := make([]travel.RetrievalHit, 0, len(best))
	for _, hit := range best {
		hits = append(hits, hit)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Hops != hits[j].Hops {
			return hits[i].Hops < hits[j].Hops
		}
		return hits[i].Item.ID < hits[j].Item.ID
	})
	return hits, false
}

type frontierNode struct {
	id   string
	seed string
}

// expand collects the edge candidates reachable from the frontier in one
// hop. Tag nodes are resolved to the items behind them immediately, so a
// tag hop-through still counts as a single hop.
func (e *Enricher) expand(ctx context.Context, frontier []frontierNode) ([]candidate, error) {
	var candidates []candidate
	expandedTags := make(map[string]bool)

	for _, node := range frontier {
		neighbors, err := e.graph.Neighbors(ctx, node.id, nil)
		if err != nil {
			return nil, err
		}

		for _, n := range neighbors {
			if n.Node.ID == "" || n.Node.ID == node.id {
				continue
			}

			if n.Node.Type == travel.ItemTypeTag {
				if expandedTags[n.Node.ID] {
					continue
				}
				expandedTags[n.Node.ID] = true

				tagged, err := e.graph.Neighbors(ctx, n.Node.ID, []travel.RelationType{travel.RelationHasTag})
				if err != nil {
					return nil, err
				}
				for _, t := range tagged {
					if t.Node.ID == "" || t.Node.ID == node.id || t.Node.Type == travel.ItemTypeTag {
						continue
					}
					candidates = append(candidates, candidate{
						node:     t.Node,
						relation: travel.RelationHasTag,
						weight:   relationWeights[travel.RelationHasTag],
						seed:     node.seed,
					})
				}
				continue
			}

			weight, ok := relationWeights[n.Relation]
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{
				node:     n.Node,
				relation: n.Relation,
				weight:   weight,
				seed:     node.seed,
			})
		}
	}

	// Strongest edges first so the per-hop cap keeps the best candidates.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].weight != candidates[j].weight {
			return candidates[i].weight > candidates[j].weight
		}
		return candidates[i].node.ID < candidates[j].node.ID
	})
	return candidates, nil
}
