package handler

import (
	"net/http"

	"github.com/yourorg/stock-chat-service/internal/model"
	"github.com/yourorg/stock-chat-service/internal/service"
	"github.com/yourorg/stock-chat-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const historyListLimit = 50

// HistoryHandler handles interaction-log HTTP requests
type HistoryHandler struct {
	history service.HistoryStore
	logger  *zap.Logger
}

// NewHistoryHandler creates a new history handler. history may be nil when no
// backend is configured.
func NewHistoryHandler(history service.HistoryStore, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// History returns logged interactions, or a not-configured marker
// GET /history
func (h *HistoryHandler) History(c *gin.Context) {
	if h.history == nil || !h.history.Configured() {
		c.JSON(http.StatusOK, gin.H{
			"message": "History store not configured",
			"data":    []model.Interaction{},
		})
		return
	}

	interactions, err := h.history.List(c.Request.Context(), historyListLimit)
	if err != nil {
		h.logger.Error("Failed to fetch history", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": interactions})
}
