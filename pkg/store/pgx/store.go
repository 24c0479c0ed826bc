package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store implements the store.VectorIndex and store.GraphStore interfaces
// using PostgreSQL with pgvector for cosine similarity search. Items and
// relations live in two tables; the relation table is read undirected so
// symmetric relations are stored once.
type Store struct {
	conn pgxIConn
}

// NewStoreWithConnection creates a Store on top of an existing connection
// or pool. The pgvector types must already be registered on the connection.
func NewStoreWithConnection(conn pgxIConn) *Store {
	return &Store{conn: conn}
}
