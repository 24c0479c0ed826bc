// Package chat turns a fused retrieval context and a conversation history
// into a grounded answer from the generation model.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/wanderkit/wanderkit/internal/util"
	"github.com/wanderkit/wanderkit/pkg/ai"
	"github.com/wanderkit/wanderkit/pkg/logger"
	"github.com/wanderkit/wanderkit/pkg/retrieval"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

const (
	// Only the most recent exchanges are replayed to the model.
	historyWindow = 6

	defaultMaxTries    = 3
	defaultTemperature = 0.7
)

const systemPrompt = `You are a knowledgeable Vietnam travel consultant. Answer using the
retrieved travel context below. Ground every recommendation in the listed
items; if the context does not cover the question, say so instead of
inventing places. Keep answers concise and practical.`

// Service generates chat answers grounded in retrieved travel context.
type Service struct {
	client      ai.Client
	assembler   *retrieval.Assembler
	maxTries    int
	temperature float64
}

// ServiceParams configures a chat Service.
type ServiceParams struct {
	Client    ai.Client
	Assembler *retrieval.Assembler
	// MaxTries bounds generation retries. Defaults to 3.
	MaxTries int
	// Temperature for generation. Defaults to 0.7.
	Temperature float64
}

// NewService creates a chat service.
func NewService(params ServiceParams) *Service {
	maxTries := params.MaxTries
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}
	temperature := params.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Service{
		client:      params.Client,
		assembler:   params.Assembler,
		maxTries:    maxTries,
		temperature: temperature,
	}
}

// Answer generates a reply for query grounded in the fused context, with
// the trailing window of history replayed for conversational continuity.
func (s *Service) Answer(
	ctx context.Context,
	query string,
	fused travel.FusedContext,
	history []ai.ChatMessage,
) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", travel.ErrInvalidInput
	}

	messages := s.buildMessages(query, fused, history)
	answer, err := util.RetryWithContext(ctx, s.maxTries, func(ctx context.Context) (string, error) {
		return s.client.GenerateChat(ctx, messages,
			ai.WithSystemPrompts(systemPrompt),
			ai.WithTemperature(s.temperature),
		)
	})
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	logger.Debug("chat answer generated",
		"context_items", len(fused.Items),
		"history", len(history),
		"degraded", fused.Degraded,
	)
	return answer, nil
}

// buildMessages assembles the model input: trimmed history, a context
// message with the retrieved items, then the user query.
func (s *Service) buildMessages(
	query string,
	fused travel.FusedContext,
	history []ai.ChatMessage,
) []ai.ChatMessage {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, history...)

	if block := s.assembler.Assemble(fused); block != "" {
		contextMsg := "Retrieved travel context:\n\n" + block
		if fused.Degraded {
			contextMsg += "\n\nNote: retrieval ran in degraded mode; the context may be incomplete."
		}
		messages = append(messages, ai.ChatMessage{Role: "user", Message: contextMsg})
		messages = append(messages, ai.ChatMessage{
			Role:    "assistant",
			Message: "Understood. I will base my recommendations on this context.",
		})
	}

	messages = append(messages, ai.ChatMessage{Role: "user", Message: query})
	return messages
}
