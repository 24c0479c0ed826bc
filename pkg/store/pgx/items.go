package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

const upsertItemSQL = `
INSERT INTO travel_items (id, type, name, city, region, tags, description, semantic_text, best_time, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	type = EXCLUDED.type,
	name = EXCLUDED.name,
	city = EXCLUDED.city,
	region = EXCLUDED.region,
	tags = EXCLUDED.tags,
	description = EXCLUDED.description,
	semantic_text = EXCLUDED.semantic_text,
	best_time = EXCLUDED.best_time,
	embedding = EXCLUDED.embedding`

// UpsertItems inserts or updates items in one batch round trip. Items
// without an embedding (tag pseudo-items) store a NULL vector and are never
// returned by Query.
func (s *Store) UpsertItems(ctx context.Context, items []travel.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		var embedding any
		if len(item.Embedding) > 0 {
			embedding = pgvector.NewVector(item.Embedding)
		}
		batch.Queue(upsertItemSQL,
			item.ID,
			string(item.Type),
			item.Name,
			item.City,
			item.Region,
			item.Tags,
			item.Description,
			item.SemanticText,
			item.BestTime,
			embedding,
		)
	}

	results := s.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert item: %w", err)
		}
	}
	return nil
}

const queryItemsSQL = `
SELECT id, type, name, city, region, tags, description, semantic_text, best_time,
	1 - (embedding <=> $1) AS similarity
FROM travel_items
WHERE embedding IS NOT NULL
	AND type <> 'tag'
	AND (cardinality($2::text[]) = 0 OR type = ANY($2))
	AND ($3 = '' OR lower(city) = lower($3))
ORDER BY embedding <=> $1, id
LIMIT $4`

// Query returns the top-k items by cosine similarity, pre-filtered by type
// and city inside the index scan. Results are ordered by similarity
// descending; pgvector's distance ordering plus the id tie-break keeps the
// order deterministic.
func (s *Store) Query(ctx context.Context, embedding []float32, k int, filter *store.Filter) ([]travel.RetrievalHit, error) {
	types := make([]string, 0)
	city := ""
	if filter != nil {
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		city = filter.City
	}

	rows, err := s.conn.Query(ctx, queryItemsSQL, pgvector.NewVector(embedding), types, city, k)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	hits := make([]travel.RetrievalHit, 0, k)
	for rows.Next() {
		var item travel.Item
		var itemType string
		var similarity float64
		if err := rows.Scan(
			&item.ID,
			&itemType,
			&item.Name,
			&item.City,
			&item.Region,
			&item.Tags,
			&item.Description,
			&item.SemanticText,
			&item.BestTime,
			&similarity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vector hit: %w", err)
		}
		item.Type = travel.ItemType(itemType)
		hits = append(hits, travel.RetrievalHit{
			Item:   item,
			Score:  similarity,
			Origin: travel.OriginVector,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}
