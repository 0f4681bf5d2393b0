package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-backend/internal/shared/middleware"
	"catalog-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		// Catalog reads are public.
		c.CatalogHandler.RegisterRoutes(v1)

		// Ingestion is a staff-only write path.
		staff := v1.Group("")
		staff.Use(middleware.AuthMiddleware(c.JWTManager), middleware.StaffOnly())
		c.IngestionHandler.RegisterRoutes(staff)
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "up", "redis": "up"}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
		if err := c.RedisClient.HealthCheck(ctx.Request.Context()); err != nil {
			checks["redis"] = "down"
		}

		ctx.JSON(status, gin.H{
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
