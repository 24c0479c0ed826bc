package retrieval

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/wanderkit/wanderkit/pkg/ai"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// stubEmbedder is an ai.Client returning a fixed embedding or error.
type stubEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.embedding, nil
}

func (s *stubEmbedder) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not a chat client")
}

func (s *stubEmbedder) ResetMetrics() {}

func (s *stubEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func TestEmbed_RejectsEmptyText(t *testing.T) {
	gateway := NewGateway(GatewayParams{Dimensions: 4})

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, _, err := gateway.Embed(context.Background(), text); !errors.Is(err, travel.ErrInvalidInput) {
			t.Fatalf("text %q: expected ErrInvalidInput, got %v", text, err)
		}
	}
}

func TestEmbed_UsesFirstHealthyProvider(t *testing.T) {
	broken := &stubEmbedder{err: errors.New("provider down")}
	healthy := &stubEmbedder{embedding: []float32{1, 2, 3, 4}}
	gateway := NewGateway(GatewayParams{
		Providers:  []ai.Client{broken, healthy},
		Dimensions: 4,
	})

	embedding, degraded, err := gateway.Embed(context.Background(), "hanoi street food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if degraded {
		t.Fatal("unexpected degraded flag when a provider answered")
	}
	if !reflect.DeepEqual(embedding, []float32{1, 2, 3, 4}) {
		t.Fatalf("expected healthy provider embedding, got %v", embedding)
	}
	if broken.calls != 1 || healthy.calls != 1 {
		t.Fatalf("expected provider chain order, got calls broken=%d healthy=%d", broken.calls, healthy.calls)
	}
}

func TestEmbed_CacheSkipsProviders(t *testing.T) {
	provider := &stubEmbedder{embedding: []float32{1, 0, 0, 0}}
	gateway := NewGateway(GatewayParams{
		Providers:  []ai.Client{provider},
		Cache:      NewMemoryCache(),
		Dimensions: 4,
	})
	ctx := context.Background()

	if _, _, err := gateway.Embed(ctx, "same query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := gateway.Embed(ctx, "same query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call for repeated query, got %d", provider.calls)
	}
}

func TestEmbed_FallbackIsDeterministicAndDegraded(t *testing.T) {
	gateway := NewGateway(GatewayParams{
		Providers:  []ai.Client{&stubEmbedder{err: errors.New("provider down")}},
		Dimensions: 8,
	})
	ctx := context.Background()

	first, degraded, err := gateway.Embed(ctx, "where to eat pho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !degraded {
		t.Fatal("expected degraded flag when all providers fail")
	}
	second, _, err := gateway.Embed(ctx, "where to eat pho")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("fallback vector differed across identical inputs")
	}

	other, _, _ := gateway.Embed(ctx, "best beaches near danang")
	if reflect.DeepEqual(first, other) {
		t.Fatal("fallback vector identical for different inputs")
	}
}

func TestEmbed_FallbackNotCached(t *testing.T) {
	cache := NewMemoryCache()
	gateway := NewGateway(GatewayParams{
		Providers:  []ai.Client{&stubEmbedder{err: errors.New("provider down")}},
		Cache:      cache,
		Dimensions: 4,
	})

	if _, _, err := gateway.Embed(context.Background(), "query"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("fallback vectors must not be cached, cache has %d entries", cache.Len())
	}
}

func TestFallbackVector_UnitLength(t *testing.T) {
	vector := FallbackVector("any text", 16)
	if len(vector) != 16 {
		t.Fatalf("expected 16 dimensions, got %d", len(vector))
	}
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Fatalf("expected unit vector, squared norm %v", norm)
	}
}
