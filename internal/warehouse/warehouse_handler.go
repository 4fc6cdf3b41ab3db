package warehouse

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WarehouseHandler struct {
	repo WarehouseRepository
	log  *zap.Logger
}

func NewHandler(repo WarehouseRepository, log *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{repo: repo, log: log}
}

func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/warehouse/items", h.GetItems)
}

func (h *WarehouseHandler) GetItems(c *gin.Context) {
	partID, _ := strconv.Atoi(c.Query("part_id"))

	items, err := h.repo.GetItems(c.Request.Context(), partID)
	if err != nil {
		h.log.Error("failed to list warehouse items", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get warehouse items"})
		return
	}

	c.JSON(http.StatusOK, items)
}
