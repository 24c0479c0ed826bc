package retrieval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/store/memory"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

func seededIndex(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()

	items := []travel.Item{
		{ID: "a", Type: travel.ItemTypeAttraction, Name: "a", City: "Hanoi", Embedding: []float32{1, 0, 0}},
		{ID: "b", Type: travel.ItemTypeAttraction, Name: "b", City: "Hue", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c", Type: travel.ItemTypeHotel, Name: "c", City: "Hanoi", Embedding: []float32{0, 1, 0}},
		{ID: "d", Type: travel.ItemTypeCity, Name: "d", Embedding: []float32{0, 0, 1}},
	}
	if err := s.UpsertItems(context.Background(), items); err != nil {
		t.Fatalf("upsert items: %v", err)
	}
	return s
}

func TestSearch_ReturnsTopKSortedBySimilarity(t *testing.T) {
	retriever := NewRetriever(seededIndex(t))

	hits, degraded := retriever.Search(context.Background(), []float32{1, 0, 0}, 2, nil)
	if degraded {
		t.Fatal("unexpected degraded flag")
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Item.ID != "a" || hits[1].Item.ID != "b" {
		t.Fatalf("expected [a b], got %v", SeedIDs(hits))
	}
	if hits[0].Score < hits[1].Score {
		t.Fatal("hits not sorted by similarity descending")
	}
	for _, hit := range hits {
		if hit.Origin != travel.OriginVector {
			t.Fatalf("expected vector origin, got %s", hit.Origin)
		}
		if hit.Hops != 0 {
			t.Fatalf("vector hits carry no hop distance, got %d", hit.Hops)
		}
	}
}

func TestSearch_FilterRestrictsBeforeRanking(t *testing.T) {
	retriever := NewRetriever(seededIndex(t))

	filter := &store.Filter{Types: []travel.ItemType{travel.ItemTypeHotel}}
	hits, _ := retriever.Search(context.Background(), []float32{1, 0, 0}, 3, filter)
	if len(hits) != 1 || hits[0].Item.ID != "c" {
		t.Fatalf("expected only hotel c, got %v", SeedIDs(hits))
	}

	filter = &store.Filter{City: "hanoi"}
	hits, _ = retriever.Search(context.Background(), []float32{1, 0, 0}, 3, filter)
	if got := SeedIDs(hits); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("expected city filter to match case-insensitively, got %v", got)
	}
}

type failingIndex struct{}

func (failingIndex) UpsertItems(context.Context, []travel.Item) error {
	return errors.New("index unavailable")
}

func (failingIndex) Query(context.Context, []float32, int, *store.Filter) ([]travel.RetrievalHit, error) {
	return nil, errors.New("index unavailable")
}

func TestSearch_BackendFailureDegrades(t *testing.T) {
	hits, degraded := NewRetriever(failingIndex{}).Search(context.Background(), []float32{1}, 5, nil)
	if !degraded {
		t.Fatal("expected degraded flag on backend failure")
	}
	if len(hits) != 0 {
		t.Fatalf("expected empty hits, got %v", hits)
	}
}

type sloppyIndex struct{}

// Query returns more than k hits, unsorted, with a duplicate id.
func (sloppyIndex) Query(context.Context, []float32, int, *store.Filter) ([]travel.RetrievalHit, error) {
	return []travel.RetrievalHit{
		{Item: travel.Item{ID: "low"}, Score: 0.1},
		{Item: travel.Item{ID: "high"}, Score: 0.9},
		{Item: travel.Item{ID: "high"}, Score: 0.9},
		{Item: travel.Item{ID: "mid"}, Score: 0.5},
	}, nil
}

func (sloppyIndex) UpsertItems(context.Context, []travel.Item) error { return nil }

func TestSearch_NormalizesBackendResults(t *testing.T) {
	hits, degraded := NewRetriever(sloppyIndex{}).Search(context.Background(), []float32{1}, 2, nil)
	if degraded {
		t.Fatal("unexpected degraded flag")
	}
	if got := SeedIDs(hits); !reflect.DeepEqual(got, []string{"high", "mid"}) {
		t.Fatalf("expected deduplicated sorted top-2 [high mid], got %v", got)
	}
}

type oppositeIndex struct{}

// Query returns a hit with negative cosine similarity, as pgvector does for
// vectors pointing away from the query.
func (oppositeIndex) Query(context.Context, []float32, int, *store.Filter) ([]travel.RetrievalHit, error) {
	return []travel.RetrievalHit{
		{Item: travel.Item{ID: "near"}, Score: 0.8},
		{Item: travel.Item{ID: "opposite"}, Score: -0.4},
	}, nil
}

func (oppositeIndex) UpsertItems(context.Context, []travel.Item) error { return nil }

func TestSearch_ClampsSimilarityToUnitRange(t *testing.T) {
	hits, degraded := NewRetriever(oppositeIndex{}).Search(context.Background(), []float32{1}, 5, nil)
	if degraded {
		t.Fatal("unexpected degraded flag")
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	for _, hit := range hits {
		if hit.Score < 0 || hit.Score > 1 {
			t.Fatalf("hit %s score %v outside [0, 1]", hit.Item.ID, hit.Score)
		}
	}
	if hits[1].Item.ID != "opposite" || hits[1].Score != 0 {
		t.Fatalf("expected opposite clamped to 0, got %v", hits[1].Score)
	}
}
