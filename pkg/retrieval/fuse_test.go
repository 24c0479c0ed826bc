package retrieval

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

func vectorHit(id string, score float64) travel.RetrievalHit {
	return travel.RetrievalHit{
		Item:   travel.Item{ID: id, Name: id},
		Score:  score,
		Origin: travel.OriginVector,
	}
}

func graphHit(id string, score float64, hops int) travel.RetrievalHit {
	return travel.RetrievalHit{
		Item:     travel.Item{ID: id, Name: id},
		Score:    score,
		Origin:   travel.OriginGraph,
		Hops:     hops,
		Seed:     "seed",
		Relation: travel.RelationSameCity,
	}
}

func TestFuse_BlendsVectorAndGraphScores(t *testing.T) {
	vector := []travel.RetrievalHit{vectorHit("A", 0.9), vectorHit("B", 0.8)}
	graph := []travel.RetrievalHit{graphHit("C", 0.5, 1), graphHit("B", 0.4, 1)}

	fused, err := Fuse(vector, graph, 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"B", "A", "C"}
	if got := fused.IDs(); !reflect.DeepEqual(got, wantIDs) {
		t.Fatalf("expected order %v, got %v", wantIDs, got)
	}

	wantScores := []float64{0.68, 0.63, 0.15}
	for i, want := range wantScores {
		got := fused.Items[i].Score
		if diff := got - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("item %s: expected score %v, got %v", fused.Items[i].Item.ID, want, got)
		}
	}

	// B appears in both sets: vector provenance wins, graph path kept.
	b := fused.Items[0]
	if b.Origin != travel.OriginVector {
		t.Fatalf("expected vector provenance for B, got %s", b.Origin)
	}
	if b.Seed != "seed" || b.Hops != 1 {
		t.Fatalf("expected graph path details on B, got seed=%q hops=%d", b.Seed, b.Hops)
	}
	if c := fused.Items[2]; c.Origin != travel.OriginGraph {
		t.Fatalf("expected graph provenance for C, got %s", c.Origin)
	}
}

func TestFuse_EmptyInputsYieldEmptyContext(t *testing.T) {
	fused, err := Fuse(nil, nil, 5, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fused.Items) != 0 {
		t.Fatalf("expected empty context, got %d items", len(fused.Items))
	}
}

func TestFuse_GraphOnlyInputStillRanks(t *testing.T) {
	fused, err := Fuse(nil, []travel.RetrievalHit{graphHit("X", 0.5, 1)}, 5, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fused.Items) != 1 || fused.Items[0].Item.ID != "X" {
		t.Fatalf("expected pure graph fusion to rank X, got %v", fused.IDs())
	}
	if diff := fused.Items[0].Score - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected score 0.15, got %v", fused.Items[0].Score)
	}
}

func TestFuse_BudgetAndDeduplication(t *testing.T) {
	vector := []travel.RetrievalHit{
		vectorHit("a", 0.9),
		vectorHit("a", 0.5),
		vectorHit("b", 0.8),
		vectorHit("c", 0.7),
	}
	graph := []travel.RetrievalHit{graphHit("a", 1.0, 1), graphHit("d", 0.9, 1)}

	fused, err := Fuse(vector, graph, 2, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fused.Items) != 2 {
		t.Fatalf("expected budget of 2, got %d items", len(fused.Items))
	}

	seen := map[string]bool{}
	for _, item := range fused.Items {
		if seen[item.Item.ID] {
			t.Fatalf("duplicate id %q in fused context", item.Item.ID)
		}
		seen[item.Item.ID] = true
	}
	// a: 0.7*0.9 + 0.3*1.0 = 0.93 beats b at 0.56.
	if fused.Items[0].Item.ID != "a" {
		t.Fatalf("expected a ranked first, got %v", fused.IDs())
	}
}

func TestFuse_TieBreaksByItemID(t *testing.T) {
	vector := []travel.RetrievalHit{vectorHit("z", 0.5), vectorHit("a", 0.5)}

	fused, err := Fuse(vector, nil, 5, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fused.IDs(); !reflect.DeepEqual(got, []string{"a", "z"}) {
		t.Fatalf("expected id-ascending tie-break, got %v", got)
	}
}

func TestFuse_IsPure(t *testing.T) {
	vector := []travel.RetrievalHit{vectorHit("A", 0.9), vectorHit("B", 0.8)}
	graph := []travel.RetrievalHit{graphHit("C", 0.5, 1)}

	first, err := Fuse(vector, graph, 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Fuse(vector, graph, 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fusing identical inputs twice differed:\n%v\n%v", first, second)
	}
}

func TestFuse_RejectsNonPositiveBudget(t *testing.T) {
	for _, budget := range []int{0, -1} {
		if _, err := Fuse(nil, nil, budget, 0.7); !errors.Is(err, travel.ErrInvalidInput) {
			t.Fatalf("budget %d: expected ErrInvalidInput, got %v", budget, err)
		}
	}
}

func TestFuse_ClampsAlpha(t *testing.T) {
	vector := []travel.RetrievalHit{vectorHit("a", 0.5)}
	graph := []travel.RetrievalHit{graphHit("b", 0.5, 1)}

	fused, err := Fuse(vector, graph, 5, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Alpha clamped to 1: the graph-only item scores zero.
	for _, item := range fused.Items {
		if item.Item.ID == "b" && item.Score != 0 {
			t.Fatalf("expected zero graph contribution at alpha=1, got %v", item.Score)
		}
	}
}
