package retrieval

import (
	"strings"
	"testing"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

// wordCounter approximates tokens as whitespace-separated words. Tests use
// it instead of the real encoding so no vocabulary download is needed.
var wordCounter = TokenCounterFunc(func(text string) int {
	return len(strings.Fields(text))
})

func fusedFixture() travel.FusedContext {
	return travel.FusedContext{Items: []travel.FusedItem{
		{
			Item: travel.Item{
				ID:          "attr_lake",
				Type:        travel.ItemTypeAttraction,
				Name:        "Hoan Kiem Lake",
				City:        "Hanoi",
				Region:      "North",
				Tags:        []string{"scenic", "walking", "historic"},
				Description: "A lake in the heart of Hanoi with the Turtle Tower at its center.",
				BestTime:    "October to December",
			},
			Score:  0.91,
			Origin: travel.OriginVector,
		},
		{
			Item: travel.Item{
				ID:   "hotel_opera",
				Type: travel.ItemTypeHotel,
				Name: "Opera Hotel",
				City: "Hanoi",
			},
			Score:    0.21,
			Origin:   travel.OriginGraph,
			Seed:     "attr_lake",
			Relation: travel.RelationSameCity,
			Hops:     1,
		},
	}}
}

func TestAssemble_FormatsNumberedBlocks(t *testing.T) {
	out := NewAssembler(nil, 0).Assemble(fusedFixture())

	for _, want := range []string{
		"[1] Hoan Kiem Lake (attraction)",
		"Location: Hanoi, North",
		"Relevance: 0.91 (vector)",
		"Tags: scenic, walking, historic",
		"Best time to visit: October to December",
		"Turtle Tower",
		"[2] Opera Hotel (hotel)",
		"Nearby: connected to attr_lake via SAME_CITY (1 hop)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Nearby: connected to attr_lake via SAME_CITY (1 hops)") {
		t.Fatal("singular hop mispluralized")
	}
}

func TestAssemble_EmptyContext(t *testing.T) {
	if out := NewAssembler(wordCounter, 10).Assemble(travel.FusedContext{}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestAssemble_TokenBudgetDropsTrailingItems(t *testing.T) {
	out := NewAssembler(wordCounter, 15).Assemble(fusedFixture())

	if !strings.Contains(out, "[1] Hoan Kiem Lake") {
		t.Fatalf("highest-ranked item must always be included, got:\n%s", out)
	}
	if strings.Contains(out, "[2]") {
		t.Fatalf("expected second item dropped by token budget, got:\n%s", out)
	}
}

func TestAssemble_FirstItemExceedingBudgetStillIncluded(t *testing.T) {
	out := NewAssembler(wordCounter, 1).Assemble(fusedFixture())
	if !strings.Contains(out, "[1] Hoan Kiem Lake") {
		t.Fatalf("expected first item despite tiny budget, got:\n%s", out)
	}
}

func TestAssemble_ClampsLongDescriptions(t *testing.T) {
	fused := travel.FusedContext{Items: []travel.FusedItem{{
		Item: travel.Item{
			ID:          "x",
			Type:        travel.ItemTypeCity,
			Name:        "X",
			Description: strings.Repeat("word ", 300),
		},
		Score:  0.5,
		Origin: travel.OriginVector,
	}}}

	out := NewAssembler(nil, 0).Assemble(fused)
	for _, line := range strings.Split(out, "\n") {
		if len(line) > maxDescriptionChars+8 {
			t.Fatalf("description line not clamped, length %d", len(line))
		}
	}
	if !strings.Contains(out, "...") {
		t.Fatal("expected ellipsis on clamped description")
	}
}

func TestAssemble_TagListCapped(t *testing.T) {
	fused := travel.FusedContext{Items: []travel.FusedItem{{
		Item: travel.Item{
			ID:   "x",
			Type: travel.ItemTypeCity,
			Name: "X",
			Tags: []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"},
		},
		Score:  0.5,
		Origin: travel.OriginVector,
	}}}

	out := NewAssembler(nil, 0).Assemble(fused)
	if strings.Contains(out, "t7") {
		t.Fatalf("expected at most %d tags, got:\n%s", maxTagsPerItem, out)
	}
	if !strings.Contains(out, "t6") {
		t.Fatalf("expected first %d tags kept, got:\n%s", maxTagsPerItem, out)
	}
}
