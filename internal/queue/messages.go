package queue

import (
	"github.com/wanderkit/wanderkit/pkg/index"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Message kinds carried on the index queue.
const (
	KindItems     = "items"
	KindRelations = "relations"
)

// IndexMsg is one unit of indexing work: a batch of dataset records to
// embed and upsert, or a batch of derived relations to upsert. Exactly one
// of Records and Relations is set, matching Kind.
type IndexMsg struct {
	Kind          string            `json:"kind"`
	CorrelationID string            `json:"correlation_id"`
	BatchID       int               `json:"batch_id"`
	TotalBatches  int               `json:"total_batches"`
	Records       []index.Record    `json:"records,omitempty"`
	Relations     []travel.Relation `json:"relations,omitempty"`
}
