package transfers

import (
	"net/http"
	"strconv"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TransfersHandler struct {
	Service *TransferService
	log     *zap.Logger
}

func NewHandler(service *TransferService, log *zap.Logger) *TransfersHandler {
	return &TransfersHandler{Service: service, log: log}
}

func (h *TransfersHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/transfers", h.AddTransfers)
	router.DELETE("/transfers/:id", h.DeleteTransfer)
	router.POST("/transfers/audits/:id/revert", h.RevertTransfer)
}

func (h *TransfersHandler) AddTransfers(c *gin.Context) {
	var req models.TransferBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Service.AddTransfers(c.Request.Context(), req.Items)
	if err != nil {
		h.log.Warn("transfer batch rejected", zap.Error(err))
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to save transfers", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TransfersHandler) DeleteTransfer(c *gin.Context) {
	transferID, err := strconv.Atoi(c.Param("id"))
	if err != nil || transferID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transfer ID is required"})
		return
	}

	result, err := h.Service.DeleteTransfer(c.Request.Context(), transferID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to delete transfer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *TransfersHandler) RevertTransfer(c *gin.Context) {
	auditID, err := strconv.Atoi(c.Param("id"))
	if err != nil || auditID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audit ID is required"})
		return
	}

	result, err := h.Service.RevertTransfer(c.Request.Context(), auditID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to revert transfer", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
