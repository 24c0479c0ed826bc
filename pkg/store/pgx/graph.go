package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

const upsertRelationSQL = `
INSERT INTO travel_relations (source, target, type)
VALUES ($1, $2, $3)
ON CONFLICT (source, target, type) DO NOTHING`

// UpsertRelations inserts relations in one batch round trip. A relation has
// no identity beyond (source, target, type), so duplicates are ignored.
func (s *Store) UpsertRelations(ctx context.Context, relations []travel.Relation) error {
	if len(relations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rel := range relations {
		batch.Queue(upsertRelationSQL, rel.Source, rel.Target, string(rel.Type))
	}

	results := s.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range relations {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert relation: %w", err)
		}
	}
	return nil
}

const neighborsSQL = `
SELECT r.type,
	i.id, i.type, i.name, i.city, i.region, i.tags, i.description, i.semantic_text, i.best_time
FROM travel_relations r
JOIN travel_items i
	ON i.id = CASE WHEN r.source = $1 THEN r.target ELSE r.source END
WHERE (r.source = $1 OR r.target = $1)
	AND (cardinality($2::text[]) = 0 OR r.type = ANY($2))
ORDER BY i.id, r.type`

// Neighbors returns all edges touching id with the far-side node resolved.
// The relation table is read undirected; edges whose far side no longer
// exists drop out of the join, which gives the missing-node tolerance the
// traversal relies on.
func (s *Store) Neighbors(ctx context.Context, id string, relationTypes []travel.RelationType) ([]store.Neighbor, error) {
	types := make([]string, 0, len(relationTypes))
	for _, t := range relationTypes {
		types = append(types, string(t))
	}

	rows, err := s.conn.Query(ctx, neighborsSQL, id, types)
	if err != nil {
		return nil, fmt.Errorf("neighbor query failed: %w", err)
	}
	defer rows.Close()

	out := make([]store.Neighbor, 0)
	for rows.Next() {
		var n store.Neighbor
		var relType, itemType string
		if err := rows.Scan(
			&relType,
			&n.Node.ID,
			&itemType,
			&n.Node.Name,
			&n.Node.City,
			&n.Node.Region,
			&n.Node.Tags,
			&n.Node.Description,
			&n.Node.SemanticText,
			&n.Node.BestTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		n.Relation = travel.RelationType(relType)
		n.Node.Type = travel.ItemType(itemType)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
