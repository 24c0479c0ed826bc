package server

import (
	"github.com/labstack/echo/v4"

	"github.com/wanderkit/wanderkit/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Retrieval and chat routes
	apiRoutes.POST("/query", routes.QueryHandler)
	apiRoutes.POST("/chat", routes.ChatHandler)
}
