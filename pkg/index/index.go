// Package index contains the index-build rules: which text gets embedded
// for an item, which pseudo-items get materialized, and which relations are
// derived from the dataset before anything is upserted into the vector
// index and graph store.
package index

import (
	"sort"
	"strings"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

const (
	maxDescriptionLen  = 800
	maxSemanticTextLen = 1000
)

// Connection is an explicit edge carried by a dataset record, typically an
// inter-city transport link.
type Connection struct {
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Record is one dataset entry: an item plus its explicit connections.
type Record struct {
	travel.Item
	Connections []Connection `json:"connections,omitempty"`
}

// EmbedText selects the text embedded for an item: semantic text first,
// then description, then the bare name. Tags are appended so tag-heavy
// queries still land on the right items.
func EmbedText(item travel.Item) string {
	text := strings.TrimSpace(item.SemanticText)
	if text == "" {
		text = strings.TrimSpace(item.Description)
	}
	if text == "" {
		text = item.Name
	}
	if len(item.Tags) > 0 {
		text = text + " | Tags: " + strings.Join(item.Tags, ", ")
	}
	return text
}

// Normalize clamps free-text fields to the sizes stored as metadata.
func Normalize(item travel.Item) travel.Item {
	if len(item.Description) > maxDescriptionLen {
		item.Description = item.Description[:maxDescriptionLen]
	}
	if len(item.SemanticText) > maxSemanticTextLen {
		item.SemanticText = item.SemanticText[:maxSemanticTextLen]
	}
	return item
}

// TagID returns the pseudo-item id for a tag name.
func TagID(tag string) string {
	return "tag:" + slug(tag)
}

func regionID(region string) string {
	return "region:" + slug(region)
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// DeriveRelations computes the full relation set for a dataset along with
// the tag and region pseudo-items the relations reference:
//
//   - LOCATED_IN from an item to its city item
//   - IN_REGION from a city to its region
//   - HAS_TAG from an item to a tag pseudo-item
//   - SAME_CITY between distinct items sharing a city
//   - SIMILAR_TAGS between distinct items sharing at least one tag
//   - CONNECTED_TO from explicit dataset connections
//
// Pairwise relations are emitted once with source/target in ascending id
// order; the graph store reads relations undirected, so one direction is
// enough. The output is deterministic for a given input order.
func DeriveRelations(records []Record) ([]travel.Item, []travel.Relation, error) {
	cityByName := make(map[string]string)
	regionItems := make(map[string]travel.Item)
	tagItems := make(map[string]travel.Item)
	ids := make(map[string]bool, len(records))

	for _, rec := range records {
		if rec.ID == "" {
			return nil, nil, travel.ErrInvalidInput
		}
		ids[rec.ID] = true
		if rec.Type == travel.ItemTypeCity {
			cityByName[strings.ToLower(rec.Name)] = rec.ID
		}
		if rec.Type == travel.ItemTypeRegion {
			regionItems[strings.ToLower(rec.Name)] = rec.Item
		}
	}

	relations := make([]travel.Relation, 0, len(records)*4)
	addRelation := func(source, target string, rel travel.RelationType) {
		relations = append(relations, travel.Relation{Source: source, Target: target, Type: rel})
	}

	for _, rec := range records {
		// LOCATED_IN: item -> city
		if rec.City != "" && rec.Type != travel.ItemTypeCity {
			if cityID, ok := cityByName[strings.ToLower(rec.City)]; ok {
				addRelation(rec.ID, cityID, travel.RelationLocatedIn)
			}
		}

		// IN_REGION: city -> region, materializing the region pseudo-item
		// when the dataset carries no region entry of its own.
		if rec.Type == travel.ItemTypeCity && rec.Region != "" {
			key := strings.ToLower(rec.Region)
			region, ok := regionItems[key]
			if !ok {
				region = travel.Item{
					ID:   regionID(rec.Region),
					Type: travel.ItemTypeRegion,
					Name: rec.Region,
				}
				regionItems[key] = region
			}
			addRelation(rec.ID, region.ID, travel.RelationInRegion)
		}

		// HAS_TAG: item -> tag pseudo-item
		for _, tag := range rec.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			id := TagID(tag)
			if _, ok := tagItems[id]; !ok {
				tagItems[id] = travel.Item{
					ID:   id,
					Type: travel.ItemTypeTag,
					Name: tag,
				}
			}
			addRelation(rec.ID, id, travel.RelationHasTag)
		}

		// CONNECTED_TO from explicit dataset connections. Unknown relation
		// labels and dangling targets are skipped.
		for _, conn := range rec.Connections {
			if !ids[conn.Target] || conn.Target == rec.ID {
				continue
			}
			rel := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(conn.Relation), " ", "_"))
			if rel == "" || rel == string(travel.RelationConnectedTo) {
				addRelation(rec.ID, conn.Target, travel.RelationConnectedTo)
			}
		}
	}

	// SAME_CITY and SIMILAR_TAGS between item pairs, canonical direction
	// by ascending id.
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			a, b := records[i], records[j]
			if b.ID < a.ID {
				a, b = b, a
			}
			if a.ID == b.ID {
				continue
			}
			if a.City != "" && strings.EqualFold(a.City, b.City) {
				addRelation(a.ID, b.ID, travel.RelationSameCity)
			}
			if sharesTag(a.Tags, b.Tags) {
				addRelation(a.ID, b.ID, travel.RelationSimilarTags)
			}
		}
	}

	extras := make([]travel.Item, 0, len(regionItems)+len(tagItems))
	for _, item := range regionItems {
		if ids[item.ID] {
			continue
		}
		extras = append(extras, item)
	}
	for _, item := range tagItems {
		extras = append(extras, item)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].ID < extras[j].ID })

	return extras, relations, nil
}

func sharesTag(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[strings.ToLower(t)] = true
	}
	for _, t := range b {
		if set[strings.ToLower(t)] {
			return true
		}
	}
	return false
}
