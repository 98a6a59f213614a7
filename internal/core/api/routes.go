package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakmoss/percolate/internal/core/auth"
	"github.com/oakmoss/percolate/internal/types"
)

// Routes builds the gin router. Liveness and metrics stay outside the
// auth boundary; everything under /v1 requires a valid API key.
func Routes(s *Service, authenticator *auth.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
		c.Next()
	})

	router.GET("/healthz", s.handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(authenticator.Middleware())
	{
		v1.POST("/domains", s.handleCreateDomain)
		v1.GET("/domains", s.handleListDomains)
		v1.POST("/expressions", s.handleCreateExpression)
		v1.DELETE("/expressions/:id", s.handleDeleteExpression)
		v1.POST("/evaluate", s.handleEvaluate)
	}

	return router
}

// requestLogger assigns a request id and logs one line per request.
func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := types.NewRequestID()
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", string(requestID))

		start := time.Now()
		c.Next()

		s.logger.Info("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// handleHealthz reports liveness. Pings the database so load balancers
// drop instances that lost their backing store.
func (s *Service) handleHealthz(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
