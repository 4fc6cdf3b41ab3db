package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	repo *CatalogRepository
	log  *zap.Logger
}

func NewHandler(repo *CatalogRepository, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, log: log}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/parts", h.GetParts)
	router.GET("/operations", h.GetOperations)
	router.GET("/sections", h.GetSections)
}

func (h *CatalogHandler) GetParts(c *gin.Context) {
	parts, err := h.repo.GetParts(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list parts", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get parts"})
		return
	}

	c.JSON(http.StatusOK, parts)
}

func (h *CatalogHandler) GetOperations(c *gin.Context) {
	operations, err := h.repo.GetOperations(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list operations", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get operations"})
		return
	}

	c.JSON(http.StatusOK, operations)
}

func (h *CatalogHandler) GetSections(c *gin.Context) {
	sections, err := h.repo.GetSections(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list sections", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get sections"})
		return
	}

	c.JSON(http.StatusOK, sections)
}
