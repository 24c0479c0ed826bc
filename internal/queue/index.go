package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wanderkit/wanderkit/pkg/ai"
	"github.com/wanderkit/wanderkit/pkg/index"
	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

const (
	// embedParallel bounds concurrent embedding requests on the per-item
	// fallback path.
	embedParallel = 4
	// embedChunkSize is the number of texts sent per provider request on
	// the batched path.
	embedChunkSize = 32
)

// embeddingBatcher is implemented by clients that embed many inputs in
// fewer provider round trips.
type embeddingBatcher interface {
	GenerateEmbeddingsChunks(ctx context.Context, chunks [][][]byte) ([][]float32, error)
}

// ProcessIndexMessage handles one index queue message: item batches are
// normalized, embedded, and upserted into the vector index; relation
// batches are upserted into the graph store.
func ProcessIndexMessage(
	ctx context.Context,
	aiClient ai.Client,
	backing store.Store,
	msg string,
) error {
	data := new(IndexMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	switch data.Kind {
	case KindItems:
		return processItems(ctx, aiClient, backing, data)
	case KindRelations:
		return processRelations(ctx, backing, data)
	default:
		return fmt.Errorf("unknown index message kind %q", data.Kind)
	}
}

func processItems(
	ctx context.Context,
	aiClient ai.Client,
	backing store.Store,
	data *IndexMsg,
) error {
	items := make([]travel.Item, len(data.Records))
	texts := make([][]byte, 0, len(data.Records))
	textIdx := make([]int, 0, len(data.Records))
	for i, record := range data.Records {
		item := index.Normalize(record.Item)
		items[i] = item
		// Tag and region pseudo-items live only in the graph, they carry
		// no embedding.
		if item.Type == travel.ItemTypeTag || item.Type == travel.ItemTypeRegion {
			continue
		}
		texts = append(texts, []byte(index.EmbedText(item)))
		textIdx = append(textIdx, i)
	}

	embeddings, err := generateEmbeddings(ctx, aiClient, texts)
	if err != nil {
		return fmt.Errorf("embed items: %w", err)
	}
	for j, embedding := range embeddings {
		items[textIdx[j]].Embedding = embedding
	}

	if err := backing.UpsertItems(ctx, items); err != nil {
		return fmt.Errorf("upsert items: %w", err)
	}

	logger.Info("[Queue] Indexed item batch",
		"correlation_id", data.CorrelationID,
		"batch_id", data.BatchID,
		"total_batches", data.TotalBatches,
		"items", len(items),
	)
	return nil
}

// generateEmbeddings embeds all inputs, preferring the provider's batched
// path and falling back to bounded per-input requests.
func generateEmbeddings(ctx context.Context, aiClient ai.Client, inputs [][]byte) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	if b, ok := aiClient.(embeddingBatcher); ok {
		chunks := make([][][]byte, 0, (len(inputs)+embedChunkSize-1)/embedChunkSize)
		for start := 0; start < len(inputs); start += embedChunkSize {
			end := min(start+embedChunkSize, len(inputs))
			chunks = append(chunks, inputs[start:end])
		}
		out, err := b.GenerateEmbeddingsChunks(ctx, chunks)
		if err != nil {
			return nil, err
		}
		if len(out) != len(inputs) {
			return nil, fmt.Errorf("batch embedding result size mismatch: got %d want %d", len(out), len(inputs))
		}
		return out, nil
	}

	out := make([][]float32, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedParallel)
	for i, in := range inputs {
		g.Go(func() error {
			embedding, err := aiClient.GenerateEmbedding(gctx, in)
			if err != nil {
				return err
			}
			out[i] = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func processRelations(ctx context.Context, backing store.Store, data *IndexMsg) error {
	if err := backing.UpsertRelations(ctx, data.Relations); err != nil {
		return fmt.Errorf("upsert relations: %w", err)
	}

	logger.Info("[Queue] Indexed relation batch",
		"correlation_id", data.CorrelationID,
		"batch_id", data.BatchID,
		"total_batches", data.TotalBatches,
		"relations", len(data.Relations),
	)
	return nil
}
