package api

import (
	"context"
	"net/http"
	"time"

	"brandpulse/jobs"
	"brandpulse/types"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// JobStore is the part of the job store the HTTP API needs
type JobStore interface {
	Enqueue(ctx context.Context, req types.AnalyzeRequest) (*jobs.Job, error)
	Fetch(ctx context.Context, id string) (*jobs.Job, error)
	Ping(ctx context.Context) error
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(store JobStore, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), cors())

	// Register resource routers
	RegisterAnalysisRoutes(r, store, logger)
	RegisterHealthRoutes(r, store)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// cors allows any origin, answering preflight requests directly
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger logs one line per request at debug level, errors at warn
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError && c.FullPath() != resultsRoute {
			logger.Warn("request failed", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
