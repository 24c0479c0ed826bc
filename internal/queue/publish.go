package queue

import (
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"github.com/wanderkit/wanderkit/internal/util"
	"github.com/wanderkit/wanderkit/pkg/index"
	"github.com/wanderkit/wanderkit/pkg/logger"
)

const publishBatchSize = 100

// PublishDataset derives the relation graph from the dataset records and
// publishes everything to the index queue in batches: first the records
// plus derived pseudo-items, then the relations. Items must land before
// relations so the graph store never references missing nodes.
func PublishDataset(ch *amqp091.Channel, records []index.Record) error {
	extras, relations, err := index.DeriveRelations(records)
	if err != nil {
		return err
	}

	all := make([]index.Record, 0, len(records)+len(extras))
	all = append(all, records...)
	for _, item := range extras {
		all = append(all, index.Record{Item: item})
	}

	correlationID := util.NewCorrelationID()

	recordBatches := (len(all) + publishBatchSize - 1) / publishBatchSize
	relationBatches := (len(relations) + publishBatchSize - 1) / publishBatchSize
	total := recordBatches + relationBatches
	batchID := 0

	for start := 0; start < len(all); start += publishBatchSize {
		end := min(start+publishBatchSize, len(all))
		batchID++
		msg := IndexMsg{
			Kind:          KindItems,
			CorrelationID: correlationID,
			BatchID:       batchID,
			TotalBatches:  total,
			Records:       all[start:end],
		}
		if err := publishMsg(ch, msg); err != nil {
			return err
		}
	}

	for start := 0; start < len(relations); start += publishBatchSize {
		end := min(start+publishBatchSize, len(relations))
		batchID++
		msg := IndexMsg{
			Kind:          KindRelations,
			CorrelationID: correlationID,
			BatchID:       batchID,
			TotalBatches:  total,
			Relations:     relations[start:end],
		}
		if err := publishMsg(ch, msg); err != nil {
			return err
		}
	}

	logger.Info("[Queue] Dataset published",
		"correlation_id", correlationID,
		"records", len(all),
		"relations", len(relations),
		"batches", total,
	)
	return nil
}

func publishMsg(ch *amqp091.Channel, msg IndexMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, IndexQueue, body)
}
