package index

import (
	"strings"
	"testing"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

func record(id string, typ travel.ItemType, name, city, region string, tags ...string) Record {
	return Record{Item: travel.Item{
		ID:     id,
		Type:   typ,
		Name:   name,
		City:   city,
		Region: region,
		Tags:   tags,
	}}
}

func hasRelation(rels []travel.Relation, source, target string, typ travel.RelationType) bool {
	for _, r := range rels {
		if r.Source == source && r.Target == target && r.Type == typ {
			return true
		}
	}
	return false
}

func TestEmbedText_PrefersSemanticText(t *testing.T) {
	item := travel.Item{
		Name:         "Hoi An",
		Description:  "Old town on the central coast.",
		SemanticText: "Lantern-lit ancient town with tailors and riverside cafes.",
		Tags:         []string{"romantic", "unesco"},
	}

	got := EmbedText(item)
	if !strings.HasPrefix(got, "Lantern-lit ancient town") {
		t.Fatalf("expected semantic text first, got %q", got)
	}
	if !strings.HasSuffix(got, "| Tags: romantic, unesco") {
		t.Fatalf("expected tag suffix, got %q", got)
	}
}

func TestEmbedText_FallsBackToDescriptionThenName(t *testing.T) {
	item := travel.Item{Name: "Hue", Description: "Imperial city."}
	if got := EmbedText(item); got != "Imperial city." {
		t.Fatalf("expected description, got %q", got)
	}

	item = travel.Item{Name: "Hue"}
	if got := EmbedText(item); got != "Hue" {
		t.Fatalf("expected name, got %q", got)
	}
}

func TestNormalize_ClampsLongText(t *testing.T) {
	item := travel.Item{
		Description:  strings.Repeat("a", 2000),
		SemanticText: strings.Repeat("b", 2000),
	}
	got := Normalize(item)
	if len(got.Description) != 800 {
		t.Fatalf("expected description clamped to 800, got %d", len(got.Description))
	}
	if len(got.SemanticText) != 1000 {
		t.Fatalf("expected semantic text clamped to 1000, got %d", len(got.SemanticText))
	}
}

func TestDeriveRelations_LocatedInAndRegion(t *testing.T) {
	records := []Record{
		record("city_hanoi", travel.ItemTypeCity, "Hanoi", "", "North"),
		record("attr_lake", travel.ItemTypeAttraction, "Hoan Kiem Lake", "Hanoi", ""),
	}

	extras, rels, err := DeriveRelations(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasRelation(rels, "attr_lake", "city_hanoi", travel.RelationLocatedIn) {
		t.Fatalf("expected LOCATED_IN attr_lake -> city_hanoi, got %v", rels)
	}
	if !hasRelation(rels, "city_hanoi", "region:north", travel.RelationInRegion) {
		t.Fatalf("expected IN_REGION city_hanoi -> region:north, got %v", rels)
	}

	foundRegion := false
	for _, e := range extras {
		if e.ID == "region:north" && e.Type == travel.ItemTypeRegion {
			foundRegion = true
		}
	}
	if !foundRegion {
		t.Fatalf("expected region pseudo-item in extras, got %v", extras)
	}
}

func TestDeriveRelations_TagsAndPairs(t *testing.T) {
	records := []Record{
		record("attr_a", travel.ItemTypeAttraction, "A", "Hue", "", "romantic"),
		record("attr_b", travel.ItemTypeAttraction, "B", "Hue", "", "romantic", "beach"),
		record("hotel_c", travel.ItemTypeHotel, "C", "Danang", "", "beach"),
	}

	extras, rels, err := DeriveRelations(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasRelation(rels, "attr_a", "tag:romantic", travel.RelationHasTag) {
		t.Fatal("expected HAS_TAG attr_a -> tag:romantic")
	}
	if !hasRelation(rels, "attr_a", "attr_b", travel.RelationSameCity) {
		t.Fatal("expected SAME_CITY attr_a -> attr_b")
	}
	if hasRelation(rels, "attr_b", "attr_a", travel.RelationSameCity) {
		t.Fatal("SAME_CITY must be emitted once in ascending id order")
	}
	if !hasRelation(rels, "attr_a", "attr_b", travel.RelationSimilarTags) {
		t.Fatal("expected SIMILAR_TAGS attr_a -> attr_b")
	}
	if !hasRelation(rels, "attr_b", "hotel_c", travel.RelationSimilarTags) {
		t.Fatal("expected SIMILAR_TAGS attr_b -> hotel_c via shared beach tag")
	}
	if hasRelation(rels, "attr_a", "hotel_c", travel.RelationSimilarTags) {
		t.Fatal("attr_a and hotel_c share no tags")
	}

	tagCount := 0
	for _, e := range extras {
		if e.Type == travel.ItemTypeTag {
			tagCount++
		}
	}
	if tagCount != 2 {
		t.Fatalf("expected 2 distinct tag pseudo-items, got %d", tagCount)
	}
}

func TestDeriveRelations_ConnectedTo(t *testing.T) {
	a := record("city_hanoi", travel.ItemTypeCity, "Hanoi", "", "")
	a.Connections = []Connection{
		{Target: "city_hue", Relation: "connected to"},
		{Target: "city_missing", Relation: "CONNECTED_TO"},
		{Target: "city_hue", Relation: "FLIES_TO"},
	}
	records := []Record{a, record("city_hue", travel.ItemTypeCity, "Hue", "", "")}

	_, rels, err := DeriveRelations(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !hasRelation(rels, "city_hanoi", "city_hue", travel.RelationConnectedTo) {
		t.Fatal("expected CONNECTED_TO city_hanoi -> city_hue")
	}
	count := 0
	for _, r := range rels {
		if r.Type == travel.RelationConnectedTo {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected dangling targets and unknown labels skipped, got %d CONNECTED_TO relations", count)
	}
}

func TestDeriveRelations_EmptyIDRejected(t *testing.T) {
	if _, _, err := DeriveRelations([]Record{{}}); err == nil {
		t.Fatal("expected error for record without id")
	}
}
