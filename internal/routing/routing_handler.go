package routing

import (
	"net/http"
	"strconv"

	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoutingHandler struct {
	Service *RouteService
	log     *zap.Logger
}

func NewHandler(service *RouteService, log *zap.Logger) *RoutingHandler {
	return &RoutingHandler{Service: service, log: log}
}

func (h *RoutingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/routes/:part_id", h.GetRoute)
	router.GET("/routes/:part_id/tail/:from_op", h.GetTailToFinish)
	router.POST("/routes/steps", h.UpsertRouteSteps)
	router.DELETE("/routes/steps", h.DeleteRouteStep)
}

func (h *RoutingHandler) GetRoute(c *gin.Context) {
	partID, err := strconv.Atoi(c.Param("part_id"))
	if err != nil || partID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Part ID is required"})
		return
	}

	route, err := h.Service.GetRoute(c.Request.Context(), partID)
	if err != nil {
		h.log.Error("failed to get route", zap.Int("part_id", partID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get route", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, route)
}

func (h *RoutingHandler) GetTailToFinish(c *gin.Context) {
	partID, err := strconv.Atoi(c.Param("part_id"))
	if err != nil || partID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Part ID is required"})
		return
	}
	fromOp, err := strconv.Atoi(c.Param("from_op"))
	if err != nil || fromOp <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "From operation number is required"})
		return
	}

	tail, err := h.Service.GetTailToFinish(c.Request.Context(), partID, fromOp)
	if err != nil {
		h.log.Error("failed to get route tail", zap.Int("part_id", partID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get route tail", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tail)
}

func (h *RoutingHandler) UpsertRouteSteps(c *gin.Context) {
	var req models.RouteStepBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	steps, err := h.Service.UpsertRouteSteps(c.Request.Context(), req.Items)
	if err != nil {
		status := custom_error.HTTPStatus(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Unable to upsert route steps", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, steps)
}

func (h *RoutingHandler) DeleteRouteStep(c *gin.Context) {
	var req models.RouteStepDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Service.DeleteRouteStep(c.Request.Context(), req.PartID, req.OpNumber); err != nil {
		status := custom_error.HTTPStatus(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Unable to delete route step", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
