package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hbenali/storefront/internal/handlers"
	"github.com/hbenali/storefront/internal/logging"
	"github.com/hbenali/storefront/internal/metrics"
	middlewareauth "github.com/hbenali/storefront/internal/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Logger  *slog.Logger
	Guard   *middlewareauth.Guard
	Users   *handlers.UserHandler
	Cart    *handlers.CartHandler
	Catalog *handlers.CatalogHandler
	Search  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = errorHandler(d.Logger)
	e.Use(requestLogger(d.Logger), metrics.Middleware)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/metrics", metrics.Handler())

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to the API")
	})

	users := e.Group("/users")
	users.GET("/all", d.Users.GetUsers)
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.POST("/logout", d.Users.Logout)
	users.GET("/profile", d.Users.Profile, d.Guard.RequireLogin)
	users.PUT("/profile", d.Users.UpdateProfile, d.Guard.RequireLogin)
	users.DELETE("/:id", d.Users.DeleteUser)

	e.GET("/products/all", d.Catalog.GetProducts)
	e.GET("/categories/all", d.Catalog.GetCategories)
	e.GET("/orders/all", d.Catalog.GetOrders)
	e.GET("/reviews/all", d.Catalog.GetReviews)

	if d.Search != nil {
		e.GET("/products/search", d.Search.Handler)
	}

	cart := e.Group("/cart", d.Guard.RequireLogin)
	cart.POST("", d.Cart.CreateCart)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddItem)
	cart.PUT("/items/:product_id", d.Cart.UpdateItem)
	cart.DELETE("/items/:product_id", d.Cart.DeleteItem)
	cart.DELETE("", d.Cart.DeleteCart)
}

// requestLogger injects the logger into the request context and emits one
// completion line per request.
func requestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rl := l.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), rl)))

			start := time.Now()
			err := next(c)

			// The error handler runs after this middleware returns, so the
			// response status is derived from the error rather than read off
			// the not-yet-written response.
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			rl.Info("request completed",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}

// errorHandler translates echo.HTTPError into its {"message": …} body and
// collapses everything else into a logged, generic 500. The underlying
// error is never echoed to the client.
func errorHandler(l *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal Server Error"

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			l.Error("unhandled error",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(code)
		} else {
			respErr = c.JSON(code, echo.Map{"message": message})
		}
		if respErr != nil {
			l.Error("error response write failed", "error", respErr)
		}
	}
}
