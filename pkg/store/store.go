package store

import (
	"context"

	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Filter restricts vector index candidates before ranking. A nil filter
// matches everything. Filtering happens inside the index query so the
// caller never receives fewer than k eligible results because of
// post-filtering.
type Filter struct {
	Types []travel.ItemType
	City  string
}

// Neighbor is one edge of a node together with the node on the far side.
type Neighbor struct {
	Relation travel.RelationType
	Node     travel.Item
}

// VectorIndex is the narrow interface to the vector index service. It is
// assumed eventually consistent: queries reflect the latest successful
// upsert, nothing stronger.
type VectorIndex interface {
	UpsertItems(ctx context.Context, items []travel.Item) error
	Query(ctx context.Context, embedding []float32, k int, filter *Filter) ([]travel.RetrievalHit, error)
}

// GraphStore is the narrow interface to the relationship graph service.
// Implementations enforce referential integrity; callers must still
// tolerate missing-node responses by skipping them.
type GraphStore interface {
	UpsertRelations(ctx context.Context, relations []travel.Relation) error
	Neighbors(ctx context.Context, id string, relationTypes []travel.RelationType) ([]Neighbor, error)
}

// Store combines both backing services. The Postgres implementation backs
// both from one database; separate services can be composed instead.
type Store interface {
	VectorIndex
	GraphStore
}
