package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/wanderkit/wanderkit/pkg/chat"
	"github.com/wanderkit/wanderkit/pkg/retrieval"
)

// App bundles the shared dependencies handlers pull from the request
// context.
type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel
	Engine *retrieval.Engine
	Chat   *chat.Service
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
