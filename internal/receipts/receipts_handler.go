package receipts

import (
	"net/http"
	"strconv"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReceiptsHandler struct {
	Service *ReceiptService
	log     *zap.Logger
}

func NewHandler(service *ReceiptService, log *zap.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{Service: service, log: log}
}

func (h *ReceiptsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/receipts", h.AddReceipts)
	router.DELETE("/receipts/:id", h.DeleteReceipt)
}

func (h *ReceiptsHandler) AddReceipts(c *gin.Context) {
	var req models.ReceiptBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Service.AddReceipts(c.Request.Context(), req.Items)
	if err != nil {
		h.log.Warn("receipt batch rejected", zap.Error(err))
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to save receipts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *ReceiptsHandler) DeleteReceipt(c *gin.Context) {
	receiptID, err := strconv.Atoi(c.Param("id"))
	if err != nil || receiptID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receipt ID is required"})
		return
	}

	if err := h.Service.DeleteReceipt(c.Request.Context(), receiptID); err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to delete receipt", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
