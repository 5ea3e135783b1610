package handler

import (
	"fmt"
	"net/http"

	"github.com/yourorg/stock-chat-service/internal/model"
	"github.com/yourorg/stock-chat-service/internal/service"
	"github.com/yourorg/stock-chat-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueryHandler handles question/answer HTTP requests
type QueryHandler struct {
	queryService *service.QueryService
	logger       *zap.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// Query handles a natural-language question about one ticker
// POST /query
func (h *QueryHandler) Query(c *gin.Context) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	result, err := h.queryService.Answer(c.Request.Context(), req.Question, req.Ticker, req.Period)
	if err != nil {
		h.logger.Warn("Query failed",
			zap.Error(err),
			zap.String("ticker", req.Ticker))
		utils.SendErrorResponse(c, http.StatusBadRequest,
			fmt.Sprintf("Unable to fetch data for %s. Please check the ticker symbol and try again.", req.Ticker))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Chat handles a free-form question without ticker context
// POST /chat
func (h *QueryHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, utils.BindingErrorMessage(err))
		return
	}

	result := h.queryService.Chat(c.Request.Context(), req.Question)
	c.JSON(http.StatusOK, result)
}
