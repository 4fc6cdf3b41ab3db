package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	repo AuditRepository
	log  *zap.Logger
}

func NewHandler(repo AuditRepository, log *zap.Logger) *AuditHandler {
	return &AuditHandler{repo: repo, log: log}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audits", h.GetAudits)
}

func (h *AuditHandler) GetAudits(c *gin.Context) {
	partID, _ := strconv.Atoi(c.Query("part_id"))

	filter := AuditFilter{PartID: partID}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp, expected RFC3339"})
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp, expected RFC3339"})
			return
		}
		filter.To = &to
	}

	audits, err := h.repo.GetAudits(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("failed to list transfer audits", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get audits"})
		return
	}

	c.JSON(http.StatusOK, audits)
}
