package handler

import (
	"net/http"

	"github.com/yourorg/stock-chat-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OverviewHandler handles market-overview HTTP requests
type OverviewHandler struct {
	overviewService *service.OverviewService
	logger          *zap.Logger
}

// NewOverviewHandler creates a new overview handler
func NewOverviewHandler(overviewService *service.OverviewService, logger *zap.Logger) *OverviewHandler {
	return &OverviewHandler{
		overviewService: overviewService,
		logger:          logger,
	}
}

// Overview returns top gainers, losers and most-active symbols
// GET /market-overview
func (h *OverviewHandler) Overview(c *gin.Context) {
	overview := h.overviewService.GetOverview(c.Request.Context())
	c.JSON(http.StatusOK, overview)
}
