package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"playbook-lab/internal/observability"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Metrics        *observability.Metrics
	MetricsHandler http.Handler // served on /metrics when set
	AllowedOrigins []string     // CORS origins, empty allows all
	AccessLog      bool         // gin request logging
}

// NewRouter wires the routes and middleware.
func NewRouter(h *BacktestHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	if opts.AccessLog {
		router.Use(gin.Logger())
	}
	router.Use(RequestID())
	router.Use(Metrics(opts.Metrics))
	router.Use(Recovery())

	router.GET("/health", h.Health)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	api := router.Group("/api/v1")
	{
		api.POST("/backtests", h.RunBacktest)
		api.GET("/backtests/stream", h.StreamBacktest)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: "NOT_FOUND", Message: "route not found"},
		})
	})
	return router
}

// NewHandler returns the router wrapped with CORS handling.
func NewHandler(h *BacktestHandler, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(NewRouter(h, opts))
}
