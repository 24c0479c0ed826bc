package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/wanderkit/wanderkit/pkg/ai"
	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

const defaultEmbedTimeout = 10 * time.Second

// Gateway turns a query string into a fixed-dimension embedding vector.
//
// Providers are tried in order; the first successful response wins and is
// cached. When every provider fails or times out, the gateway falls back to
// a deterministic hash-seeded vector so retrieval stays reproducible, and
// reports degraded mode instead of returning an error.
type Gateway struct {
	providers  []ai.Client
	cache      Cache
	dimensions int
	timeout    time.Duration
}

// GatewayParams configures a Gateway.
type GatewayParams struct {
	// Providers are tried in order on every cache miss.
	Providers []ai.Client
	// Cache may be nil, in which case every call goes to the providers.
	Cache Cache
	// Dimensions of the embedding space. Required.
	Dimensions int
	// Timeout bounds each provider call. Defaults to 10s.
	Timeout time.Duration
}

// NewGateway creates an embedding gateway.
func NewGateway(params GatewayParams) *Gateway {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultEmbedTimeout
	}
	return &Gateway{
		providers:  params.Providers,
		cache:      params.Cache,
		dimensions: params.Dimensions,
		timeout:    timeout,
	}
}

// Embed returns the embedding for text. The degraded flag reports that no
// provider answered and the deterministic fallback vector was used; it is
// meant for logging and the response envelope, never for ranking decisions.
//
// An empty or whitespace-only text is rejected with travel.ErrInvalidInput.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, bool, error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, travel.ErrInvalidInput
	}

	key := cacheKey(text)
	if g.cache != nil {
		if embedding, ok := g.cache.Get(key); ok {
			return embedding, false, nil
		}
	}

	for _, provider := range g.providers {
		embedding, err := g.embedWithTimeout(ctx, provider, text)
		if err != nil {
			logger.Warn("embedding provider failed, trying next", "error", err)
			continue
		}
		if g.cache != nil {
			g.cache.Set(key, embedding)
		}
		return embedding, false, nil
	}

	logger.Warn("all embedding providers unavailable, using fallback vector")
	return FallbackVector(text, g.dimensions), true, nil
}

func (g *Gateway) embedWithTimeout(ctx context.Context, provider ai.Client, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return provider.GenerateEmbedding(ctx, []byte(text))
}

// FallbackVector builds a deterministic unit vector from the text digest.
// Identical input always yields an identical vector, so degraded-mode
// retrieval is reproducible without a live provider.
func FallbackVector(text string, dimensions int) []float32 {
	digest := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(digest[:8]))
	rng := rand.New(rand.NewSource(seed))

	vector := make([]float32, dimensions)
	var norm float64
	for i := range vector {
		v := rng.Float64()*2 - 1
		vector[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		return vector
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}

func cacheKey(text string) string {
	digest := sha256.Sum256([]byte(text))
	return hex.EncodeToString(digest[:])
}
