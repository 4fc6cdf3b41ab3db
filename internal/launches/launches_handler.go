package launches

import (
	"net/http"
	"strconv"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LaunchesHandler struct {
	Service *LaunchService
	log     *zap.Logger
}

func NewHandler(service *LaunchService, log *zap.Logger) *LaunchesHandler {
	return &LaunchesHandler{Service: service, log: log}
}

func (h *LaunchesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/launches", h.AddLaunches)
	router.DELETE("/launches/:id", h.DeleteLaunch)
}

func (h *LaunchesHandler) AddLaunches(c *gin.Context) {
	var req models.LaunchBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Service.AddLaunches(c.Request.Context(), req.Items)
	if err != nil {
		h.log.Warn("launch batch rejected", zap.Error(err))
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to save launches", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *LaunchesHandler) DeleteLaunch(c *gin.Context) {
	launchID, err := strconv.Atoi(c.Param("id"))
	if err != nil || launchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Launch ID is required"})
		return
	}

	if err := h.Service.DeleteLaunch(c.Request.Context(), launchID); err != nil {
		c.AbortWithStatusJSON(custom_error.HTTPStatus(err), gin.H{"error": "Unable to delete launch", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
