package routes

import (
	"log"
	"os"

	"github.com/Ilay3/UchetNZP-sub000/internal/container"
	"github.com/Ilay3/UchetNZP-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes mounts every handler under the /api prefix.
func RegisterAPIRoutes(router *gin.Engine, c *container.Container) {
	api := router.Group("/api")

	c.CatalogHandler.RegisterRoutes(api)
	c.RoutingHandler.RegisterRoutes(api)
	c.BalancesHandler.RegisterRoutes(api)
	c.LabelsHandler.RegisterRoutes(api)
	c.LaunchesHandler.RegisterRoutes(api)
	c.ReceiptsHandler.RegisterRoutes(api)
	c.TransfersHandler.RegisterRoutes(api)
	c.WarehouseHandler.RegisterRoutes(api)
	c.AuditHandler.RegisterRoutes(api)
}

func RegisterUtilityRoutes(router *gin.Engine) {
	router.GET("/health", middleware.HealthCheckHandler())

	openapiFilePath := "./docs/index.html"
	if _, err := os.Stat(openapiFilePath); err == nil {
		router.GET("/openapi.html", func(c *gin.Context) {
			c.File(openapiFilePath)
		})
	} else {
		log.Printf("Warning: %s not found. Route /openapi.html will not be registered.\n", openapiFilePath)
	}
}
