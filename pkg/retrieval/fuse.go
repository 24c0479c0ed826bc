package retrieval

import (
	"sort"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

// DefaultAlpha is the blend weight favoring vector relevance over
// structural graph proximity.
const DefaultAlpha = 0.7

// Fuse merges vector hits and graph hits into one deduplicated, ranked
// context of at most budget items.
//
// Combined score = alpha*vector + (1-alpha)*graph, with 0 for a missing
// term. Items present in both sets keep vector provenance together with
// the graph path details. Output is sorted by combined score descending
// with an item-id tie-break. Fuse is a pure function of its inputs.
//
// A budget <= 0 is rejected with travel.ErrInvalidInput. Alpha outside
// [0,1] is clamped.
func Fuse(
	vectorHits []travel.RetrievalHit,
	graphHits []travel.RetrievalHit,
	budget int,
	alpha float64,
) (travel.FusedContext, error) {
	if budget <= 0 {
		return travel.FusedContext{}, travel.ErrInvalidInput
	}
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}

	type entry struct {
		item        travel.Item
		vectorScore float64
		graphScore  float64
		fromVector  bool
		seed        string
		relation    travel.RelationType
		hops        int
	}
	entries := make(map[string]*entry, len(vectorHits)+len(graphHits))

	for _, hit := range vectorHits {
		if hit.Item.ID == "" {
			continue
		}
		e, ok := entries[hit.Item.ID]
		if !ok {
			e = &entry{item: hit.Item}
			entries[hit.Item.ID] = e
		}
		e.fromVector = true
		if hit.Score > e.vectorScore {
			e.vectorScore = hit.Score
		}
	}

	for _, hit := range graphHits {
		if hit.Item.ID == "" {
			continue
		}
		e, ok := entries[hit.Item.ID]
		if !ok {
			e = &entry{item: hit.Item}
			entries[hit.Item.ID] = e
		}
		if hit.Score > e.graphScore || e.hops == 0 {
			e.graphScore = hit.Score
			e.seed = hit.Seed
			e.relation = hit.Relation
			e.hops = hit.Hops
		}
	}

	items := make([]travel.FusedItem, 0, len(entries))
	for _, e := range entries {
		origin := travel.OriginGraph
		if e.fromVector {
			origin = travel.OriginVector
		}
		items = append(items, travel.FusedItem{
			Item:     e.item,
			Score:    alpha*e.vectorScore + (1-alpha)*e.graphScore,
			Origin:   origin,
			Seed:     e.seed,
			Relation: e.relation,
			Hops:     e.hops,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Item.ID < items[j].Item.ID
	})

	if len(items) > budget {
		items = items[:budget]
	}
	return travel.FusedContext{Items: items}, nil
}
