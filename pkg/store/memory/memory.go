package memory

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Store is an in-memory implementation of store.VectorIndex and
// store.GraphStore. It backs tests and the local single-process mode where
// no Postgres instance is available. All methods are safe for concurrent
// use; reads take a shared lock so concurrent queries never block each other.
type Store struct {
	mu    sync.RWMutex
	items map[string]travel.Item
	edges map[string][]edge
}

type edge struct {
	target   string
	relation travel.RelationType
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]travel.Item),
		edges: make(map[string][]edge),
	}
}

// UpsertItems inserts or replaces items by id.
func (s *Store) UpsertItems(ctx context.Context, items []travel.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.items[item.ID] = item
	}
	return nil
}

// UpsertRelations inserts relations, deduplicating by (source, target, type).
// Edges are stored in both directions so traversal matches the undirected
// neighbor expansion of the graph service.
func (s *Store) UpsertRelations(ctx context.Context, relations []travel.Relation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rel := range relations {
		s.addEdge(rel.Source, rel.Target, rel.Type)
		s.addEdge(rel.Target, rel.Source, rel.Type)
	}
	return nil
}

func (s *Store) addEdge(from, to string, rel travel.RelationType) {
	for _, e := range s.edges[from] {
		if e.target == to && e.relation == rel {
			return
		}
	}
	s.edges[from] = append(s.edges[from], edge{target: to, relation: rel})
}

// Query returns the top-k items by cosine similarity to the query embedding,
// sorted descending with item-id ascending tie-break. Tag pseudo-items and
// items without embeddings are never candidates.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter *store.Filter) ([]travel.RetrievalHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]travel.RetrievalHit, 0, k)
	for _, item := range s.items {
		if item.Type == travel.ItemTypeTag || len(item.Embedding) == 0 {
			continue
		}
		if !matchesFilter(item, filter) {
			continue
		}
		hits = append(hits, travel.RetrievalHit{
			Item:   item,
			Score:  cosineSimilarity(embedding, item.Embedding),
			Origin: travel.OriginVector,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].Item.ID < hits[j].Item.ID
		}
		return hits[i].Score > hits[j].Score
	})
	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Neighbors returns all edges touching id, restricted to the given relation
// types, with the far-side node resolved. Edges to missing nodes are skipped.
func (s *Store) Neighbors(ctx context.Context, id string, relationTypes []travel.RelationType) ([]store.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.edges[id]
	out := make([]store.Neighbor, 0, len(edges))
	for _, e := range edges {
		if len(relationTypes) > 0 && !slices.Contains(relationTypes, e.relation) {
			continue
		}
		node, ok := s.items[e.target]
		if !ok {
			continue
		}
		out = append(out, store.Neighbor{Relation: e.relation, Node: node})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node.ID == out[j].Node.ID {
			return out[i].Relation < out[j].Relation
		}
		return out[i].Node.ID < out[j].Node.ID
	})
	return out, nil
}

func matchesFilter(item travel.Item, filter *store.Filter) bool {
	if filter == nil {
		return true
	}
	if len(filter.Types) > 0 && !slices.Contains(filter.Types, item.Type) {
		return false
	}
	if filter.City != "" && !strings.EqualFold(filter.City, item.City) {
		return false
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
