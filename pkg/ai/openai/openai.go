package openai

import (
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/wanderkit/wanderkit/pkg/ai"
)

// OpenAIClient implements the ai.Client interface against any
// OpenAI-compatible API. It manages separate clients for embeddings and
// chat so the two can point at different providers — the chat endpoint is
// commonly an OpenRouter deployment while embeddings stay on OpenAI.
type OpenAIClient struct {
	embeddingModel string
	chatModel      string
	dimensions     int
	timeoutMin     int

	embeddingURL string
	chatURL      string

	embeddingLock *semaphore.Weighted
	chatLock      *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewOpenAIClientParams defines the configuration parameters for creating
// a new OpenAIClient.
type NewOpenAIClientParams struct {
	EmbeddingModel string
	ChatModel      string

	// Dimensions is the fixed embedding dimension D. Provider output is
	// truncated or zero-padded to this length.
	Dimensions int

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	MaxConcurrentRequests int64
	TimeoutMinutes        int
}

// NewOpenAIClient creates and returns a new OpenAIClient configured with
// the provided parameters. A client whose API key is empty is left nil and
// the corresponding operations fail with a descriptive error.
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = 2
	}
	dim := params.Dimensions
	if dim <= 0 {
		dim = defaultDimensions
	}

	return &OpenAIClient{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,
		dimensions:     dim,
		timeoutMin:     timeoutMin,

		embeddingURL: params.EmbeddingURL,
		chatURL:      params.ChatURL,

		embeddingLock: semaphore.NewWeighted(maxConcurrent),
		chatLock:      semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
