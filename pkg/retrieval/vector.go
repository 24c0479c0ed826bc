package retrieval

import (
	"context"
	"sort"

	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Retriever answers top-k nearest-neighbor queries against a vector index.
type Retriever struct {
	index store.VectorIndex
}

// NewRetriever creates a retriever over the given index.
func NewRetriever(index store.VectorIndex) *Retriever {
	return &Retriever{index: index}
}

// Search returns up to k hits sorted by similarity descending with an
// item-id tie-break. A backend failure yields an empty result and the
// degraded flag instead of an error, so the pipeline keeps running.
func (r *Retriever) Search(
	ctx context.Context,
	embedding []float32,
	k int,
	filter *store.Filter,
) ([]travel.RetrievalHit, bool) {
	if k <= 0 {
		return nil, false
	}

	hits, err := r.index.Query(ctx, embedding, k, filter)
	if err != nil {
		logger.Error("vector index query failed", "error", err)
		return nil, true
	}

	return normalizeVectorHits(hits, k), false
}

// normalizeVectorHits enforces the search contract regardless of backend
// behavior: origin=vector, unique ids, scores in [0, 1], deterministic
// order, length <= k. Cosine similarity from the index can go negative for
// opposing vectors; such hits clamp to 0 so fusion never sees a score
// outside the declared range.
func normalizeVectorHits(hits []travel.RetrievalHit, k int) []travel.RetrievalHit {
	seen := make(map[string]bool, len(hits))
	out := make([]travel.RetrievalHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Item.ID == "" || seen[hit.Item.ID] {
			continue
		}
		seen[hit.Item.ID] = true
		hit.Origin = travel.OriginVector
		hit.Hops = 0
		hit.Seed = ""
		hit.Relation = ""
		if hit.Score < 0 {
			hit.Score = 0
		} else if hit.Score > 1 {
			hit.Score = 1
		}
		out = append(out, hit)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Item.ID < out[j].Item.ID
	})

	if len(out) > k {
		out = out[:k]
	}
	return out
}

// SeedIDs extracts the item identifiers of vector hits in ranked order for
// use as graph traversal seeds.
func SeedIDs(hits []travel.RetrievalHit) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.Item.ID)
	}
	return ids
}
