package balances

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BalancesHandler struct {
	repo BalanceRepository
	log  *zap.Logger
}

func NewHandler(repo BalanceRepository, log *zap.Logger) *BalancesHandler {
	return &BalancesHandler{repo: repo, log: log}
}

func (h *BalancesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/balances", h.GetBalances)
}

func (h *BalancesHandler) GetBalances(c *gin.Context) {
	partID, _ := strconv.Atoi(c.Query("part_id"))
	sectionID, _ := strconv.Atoi(c.Query("section_id"))

	result, err := h.repo.GetBalances(c.Request.Context(), partID, sectionID)
	if err != nil {
		h.log.Error("failed to list balances", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to get balances"})
		return
	}

	c.JSON(http.StatusOK, result)
}
