package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"currencyrate-service/pkg/logger"
	"currencyrate-service/pkg/metrics"
)

// SetupRoutes настраивает все маршруты сервиса с использованием Gin
func SetupRoutes(rateHandler *RateHandler) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("currencyrate-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "currencyrate-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rates := router.Group("/rates")
	{
		rates.GET("/history", rateHandler.GetHistory)
		rates.POST("/sync", rateHandler.SyncRates)
	}

	router.GET("/products/:id/prices", rateHandler.GetProductPrices)

	settings := router.Group("/settings")
	{
		settings.GET("", rateHandler.GetSettings)
		settings.PUT("", rateHandler.UpdateSettings)
	}

	return router
}
