package labels

import (
	"net/http"
	"strconv"
	"time"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LabelsHandler struct {
	Service *LabelService
	log     *zap.Logger
}

func NewHandler(service *LabelService, log *zap.Logger) *LabelsHandler {
	return &LabelsHandler{Service: service, log: log}
}

type CreateLabelRequest struct {
	PartID    int       `json:"part_id" binding:"required"`
	LabelDate time.Time `json:"label_date" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

type CreateLabelsBatchRequest struct {
	PartID    int       `json:"part_id" binding:"required"`
	LabelDate time.Time `json:"label_date" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	Count     int       `json:"count" binding:"required"`
}

type CreateLabelWithNumberRequest struct {
	PartID    int       `json:"part_id" binding:"required"`
	LabelDate time.Time `json:"label_date" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	Number    string    `json:"number" binding:"required"`
}

type UpdateLabelRequest struct {
	Quantity  int       `json:"quantity" binding:"required"`
	LabelDate time.Time `json:"label_date" binding:"required"`
}

func (h *LabelsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/labels", h.GetLabels)
	router.POST("/labels", h.CreateLabel)
	router.POST("/labels/batch", h.CreateLabelsBatch)
	router.POST("/labels/manual", h.CreateLabelWithNumber)
	router.PUT("/labels/:id", h.UpdateLabel)
	router.DELETE("/labels/:id", h.DeleteLabel)
}

func (h *LabelsHandler) GetLabels(c *gin.Context) {
	partID, _ := strconv.Atoi(c.Query("part_id"))

	result, err := h.Service.GetLabels(c.Request.Context(), partID)
	if err != nil {
		h.log.Error("failed to list labels", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get labels"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LabelsHandler) CreateLabel(c *gin.Context) {
	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.Service.CreateLabels(c.Request.Context(), req.PartID, req.LabelDate, req.Quantity, 1)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to create label", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created[0])
}

func (h *LabelsHandler) CreateLabelsBatch(c *gin.Context) {
	var req CreateLabelsBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.Service.CreateLabels(c.Request.Context(), req.PartID, req.LabelDate, req.Quantity, req.Count)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to create labels", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LabelsHandler) CreateLabelWithNumber(c *gin.Context) {
	var req CreateLabelWithNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.Service.CreateLabelWithNumber(c.Request.Context(), req.PartID, req.LabelDate, req.Quantity, req.Number)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to create label", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *LabelsHandler) UpdateLabel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Label ID is required"})
		return
	}

	var req UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.Service.UpdateLabel(c.Request.Context(), id, req.Quantity, req.LabelDate)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to update label", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *LabelsHandler) DeleteLabel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Label ID is required"})
		return
	}

	if err := h.Service.DeleteLabel(c.Request.Context(), id); err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to delete label", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
