package restapi

import (
	"net/http"
	"time"

	"netprofile/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const swaggerSpecPath = "/docs/swagger.yaml"

// ZapLoggerMiddleware logs every request through zap.
func ZapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String(), fields...)
			return
		}
		logger.Debug("HTTP request", fields...)
	}
}

// SetupRouter configures and returns the gin router.
func SetupRouter(networkHandler *NetworkHandler, cfg *configloader.Config, zapLogger *zap.Logger, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", networkHandler.ListNetworksHandler)
		v1.GET("/networks/:name", networkHandler.GetNetworkHandler)
		v1.GET("/networks/:name/status", networkHandler.GetNetworkStatusHandler)
		v1.GET("/networks/:name/gas", networkHandler.GetNetworkGasHandler)
		v1.GET("/status", networkHandler.GetAllStatusesHandler)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	if cfg.Server.SwaggerEnabled {
		router.StaticFile(swaggerSpecPath, cfg.Server.SwaggerFile)
		swaggerURL := ginSwagger.URL(swaggerSpecPath)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
		zapLogger.Info("Swagger UI enabled", zap.String("path", "/swagger/index.html"))
	}

	return router
}
