package retrieval

import (
	"context"
	"strings"

	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// Default query parameters.
const (
	DefaultTopK      = 5
	DefaultMaxHops   = 2
	DefaultMaxPerHop = 10
	DefaultBudget    = 10
)

// Options tunes a single engine query. Zero values fall back to the
// package defaults.
type Options struct {
	// TopK is the vector retrieval depth.
	TopK int
	// MaxHops bounds the graph traversal depth.
	MaxHops int
	// MaxPerHop caps newly discovered nodes per traversal hop.
	MaxPerHop int
	// Budget is the maximum number of fused context items.
	Budget int
	// Alpha blends vector and graph scores. Zero means DefaultAlpha;
	// use a small epsilon to effectively disable the vector term.
	Alpha float64
	// Filter restricts vector candidates by type and city.
	Filter *store.Filter
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MaxHops <= 0 {
		o.MaxHops = DefaultMaxHops
	}
	if o.MaxPerHop <= 0 {
		o.MaxPerHop = DefaultMaxPerHop
	}
	if o.Budget == 0 {
		o.Budget = DefaultBudget
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	return o
}

// Engine runs the full hybrid retrieval pipeline: embed the query, pull
// the nearest items from the vector index, expand them through the
// relationship graph, and fuse both signals into one ranked context.
type Engine struct {
	gateway   *Gateway
	retriever *Retriever
	enricher  *Enricher
}

// NewEngine wires the pipeline stages together.
func NewEngine(gateway *Gateway, retriever *Retriever, enricher *Enricher) *Engine {
	return &Engine{
		gateway:   gateway,
		retriever: retriever,
		enricher:  enricher,
	}
}

// NewEngineFromStore builds an engine whose retriever and enricher share
// one backing store.
func NewEngineFromStore(gateway *Gateway, backing store.Store) *Engine {
	return NewEngine(gateway, NewRetriever(backing), NewEnricher(backing))
}

// Query runs the pipeline for a user query and returns the fused context.
//
// Component failures degrade the result instead of failing it: the caller
// always receives a structurally valid, possibly empty, FusedContext. The
// only errors returned are synchronous input rejections, reported as
// travel.ErrInvalidInput.
func (e *Engine) Query(ctx context.Context, query string, opts Options) (travel.FusedContext, error) {
	if strings.TrimSpace(query) == "" {
		return travel.FusedContext{}, travel.ErrInvalidInput
	}
	opts = opts.withDefaults()
	if opts.Budget <= 0 {
		return travel.FusedContext{}, travel.ErrInvalidInput
	}

	embedding, degraded, err := e.gateway.Embed(ctx, query)
	if err != nil {
		return travel.FusedContext{}, err
	}

	vectorHits, vectorDegraded := e.retriever.Search(ctx, embedding, opts.TopK, opts.Filter)
	degraded = degraded || vectorDegraded

	// Graph enrichment needs vector seeds; without them the context is
	// empty rather than a blind graph walk.
	if len(vectorHits) == 0 {
		logger.Debug("vector retrieval returned no hits", "degraded", degraded)
		return travel.FusedContext{Degraded: degraded}, nil
	}

	graphHits, graphDegraded := e.enricher.Enrich(ctx, SeedIDs(vectorHits), opts.MaxHops, opts.MaxPerHop)
	degraded = degraded || graphDegraded

	fused, err := Fuse(vectorHits, graphHits, opts.Budget, opts.Alpha)
	if err != nil {
		return travel.FusedContext{}, err
	}
	fused.Degraded = degraded

	logger.Debug("query fused",
		"vector_hits", len(vectorHits),
		"graph_hits", len(graphHits),
		"context_items", len(fused.Items),
		"degraded", degraded,
	)
	return fused, nil
}
