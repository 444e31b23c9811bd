package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"synthetic-audience/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// jwtSvc y limiter son opcionales: nil deshabilita auth y rate limit respectivamente.
func NewRouter(
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	experimentH *ExperimentHandler,
	archetypeH *ArchetypeHandler,
	jwtSvc *service.JWTService,
	limiter service.RunLimiter,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	r.GET("/archetypes", jsonContentTypeMiddleware(), archetypeH.List)

	experiments := r.Group("/experiments")
	if jwtSvc != nil {
		experiments.Use(JWTAuthMiddleware(jwtSvc))
	}
	if limiter != nil {
		experiments.Use(RunLimitMiddleware(limiter))
	}
	experiments.POST("/run", experimentH.Run)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
// No se usa en el stream NDJSON.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
