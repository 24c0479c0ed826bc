package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/wanderkit/wanderkit/internal/server/middleware"
	"github.com/wanderkit/wanderkit/pkg/ai"
	"github.com/wanderkit/wanderkit/pkg/retrieval"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// ChatHandler runs the retrieval pipeline and generates a grounded answer
// from the fused context.
func ChatHandler(c echo.Context) error {
	type historyMessage struct {
		Role    string `json:"role" validate:"required,oneof=user assistant"`
		Message string `json:"message" validate:"required"`
	}

	type chatBody struct {
		Query   string           `json:"query" validate:"required"`
		City    string           `json:"city"`
		Types   []string         `json:"types" validate:"omitempty,dive,oneof=city attraction hotel activity region"`
		History []historyMessage `json:"history" validate:"omitempty,dive"`
	}

	type chatResponse struct {
		Message  string             `json:"message"`
		Answer   string             `json:"answer,omitempty"`
		Items    []travel.FusedItem `json:"items,omitempty"`
		Degraded bool               `json:"degraded,omitempty"`
	}

	data := new(chatBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	fused, err := app.Engine.Query(ctx, data.Query, retrieval.Options{
		Filter: buildFilter(data.City, data.Types),
	})
	if err != nil {
		if errors.Is(err, travel.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, chatResponse{
				Message: "Invalid query",
			})
		}
		return c.JSON(http.StatusInternalServerError, chatResponse{
			Message: "Internal server error",
		})
	}

	history := make([]ai.ChatMessage, 0, len(data.History))
	for _, msg := range data.History {
		history = append(history, ai.ChatMessage{Role: msg.Role, Message: msg.Message})
	}

	answer, err := app.Chat.Answer(ctx, data.Query, fused, history)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, chatResponse{
			Message: "Failed to generate answer",
		})
	}

	return c.JSON(http.StatusOK, chatResponse{
		Message:  "Chat successful",
		Answer:   answer,
		Items:    fused.Items,
		Degraded: fused.Degraded,
	})
}
