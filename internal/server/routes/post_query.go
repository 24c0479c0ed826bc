package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/wanderkit/wanderkit/internal/server/middleware"
	"github.com/wanderkit/wanderkit/pkg/retrieval"
	"github.com/wanderkit/wanderkit/pkg/store"
	"github.com/wanderkit/wanderkit/pkg/travel"
)

// QueryHandler runs the hybrid retrieval pipeline and returns the ranked
// context without a generation step.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Query   string   `json:"query" validate:"required"`
		TopK    int      `json:"top_k" validate:"omitempty,min=1,max=50"`
		MaxHops int      `json:"max_hops" validate:"omitempty,min=1,max=5"`
		Budget  int      `json:"budget" validate:"omitempty,min=1,max=50"`
		City    string   `json:"city"`
		Types   []string `json:"types" validate:"omitempty,dive,oneof=city attraction hotel activity region"`
		Alpha   float64  `json:"alpha" validate:"omitempty,gt=0,lte=1"`
	}

	type queryResponse struct {
		Message  string             `json:"message"`
		Items    []travel.FusedItem `json:"items,omitempty"`
		Degraded bool               `json:"degraded,omitempty"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	fused, err := app.Engine.Query(ctx, data.Query, retrieval.Options{
		TopK:    data.TopK,
		MaxHops: data.MaxHops,
		Budget:  data.Budget,
		Alpha:   data.Alpha,
		Filter:  buildFilter(data.City, data.Types),
	})
	if err != nil {
		if errors.Is(err, travel.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, queryResponse{
				Message: "Invalid query",
			})
		}
		return c.JSON(http.StatusInternalServerError, queryResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		Message:  "Query successful",
		Items:    fused.Items,
		Degraded: fused.Degraded,
	})
}

func buildFilter(city string, types []string) *store.Filter {
	if city == "" && len(types) == 0 {
		return nil
	}
	filter := &store.Filter{City: city}
	for _, t := range types {
		filter.Types = append(filter.Types, travel.ItemType(t))
	}
	return filter
}
