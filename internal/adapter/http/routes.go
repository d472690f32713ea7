package http

import (
	"kubetodo/internal/adapter/http/handler"
	"kubetodo/internal/adapter/http/middleware"
	"kubetodo/internal/core/port"
	"kubetodo/pkg/config"
	"kubetodo/pkg/logging"
	"kubetodo/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type HandlersConfig struct {
	TodoHandler *handler.TodoHandler
}

// SetupRouter builds the full middleware chain in the order the service
// runs with in production: tracing, request logging, response cache,
// rate limiting, metrics, recovery, CORS.
func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *logging.AppLogger, cacheRepo port.CacheRepository, cfg *config.AppConfig) *gin.Engine {
	if gin.Mode() == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(otelgin.Middleware("kubetodo"))
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.CacheEnabled && cacheRepo != nil {
		responseCache := middleware.NewResponseCache(cacheRepo, cfg.CacheConfigs, logger.Logger.Logger, metrics)
		router.Use(responseCache.CacheMiddleware())
	}

	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitConfigs, logger.Logger.Logger, metrics)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	registerTodoRoutes(router, handlers.TodoHandler)

	return router
}

func registerTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	api := router.Group("/api")
	{
		api.GET("/todos", todoHandler.ListTodos)
		api.POST("/todos", todoHandler.CreateTodo)
		api.PUT("/todos/:id", todoHandler.UpdateTodo)
		api.DELETE("/todos/:id", todoHandler.DeleteTodo)
	}
}

// SetupRouterForTests skips telemetry, caching and rate limiting so tests
// exercise only routing, handlers and CORS.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	registerTodoRoutes(router, handlers.TodoHandler)

	return router
}
