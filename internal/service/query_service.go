package service

import (
	"context"
	"strings"
	"time"

	"github.com/yourorg/stock-chat-service/internal/model"

	"go.uber.org/zap"
)

// TickerPromptAnswer is returned when a query arrives without a ticker
const TickerPromptAnswer = "Please provide a stock ticker symbol (e.g., AAPL, GOOGL, MSFT)"

const suggestionCount = 4

// MarketDataClient fetches a snapshot of market data for one ticker
type MarketDataClient interface {
	GetSnapshot(ctx context.Context, ticker, period string) (*model.StockSnapshot, error)
}

// HistoryStore is the best-effort interaction log
type HistoryStore interface {
	Configured() bool
	Save(ctx context.Context, interaction *model.Interaction) error
	List(ctx context.Context, limit int) ([]model.Interaction, error)
}

// EventPublisher emits interaction events to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, interaction *model.Interaction) error
}

// QueryService orchestrates a single question/answer exchange: fetch market
// data, classify intent, shape the chart payload and log the interaction
type QueryService struct {
	market        MarketDataClient
	classifier    *Classifier
	history       HistoryStore
	events        EventPublisher
	defaultPeriod string
	logTimeout    time.Duration
	logger        *zap.Logger
}

// NewQueryService creates a new query service. history and events may be nil.
func NewQueryService(
	market MarketDataClient,
	classifier *Classifier,
	history HistoryStore,
	events EventPublisher,
	defaultPeriod string,
	logTimeout time.Duration,
	logger *zap.Logger,
) *QueryService {
	if defaultPeriod == "" {
		defaultPeriod = "1mo"
	}
	if logTimeout <= 0 {
		logTimeout = 5 * time.Second
	}
	return &QueryService{
		market:        market,
		classifier:    classifier,
		history:       history,
		events:        events,
		defaultPeriod: defaultPeriod,
		logTimeout:    logTimeout,
		logger:        logger,
	}
}

// Answer processes a natural-language question about one ticker. A missing
// ticker short-circuits with a prompt; a data-gateway failure is returned to
// the caller. Logging failures are swallowed.
func (s *QueryService) Answer(ctx context.Context, question, ticker, period string) (*model.QueryResult, error) {
	if strings.TrimSpace(ticker) == "" {
		return &model.QueryResult{
			Answer:      TickerPromptAnswer,
			Data:        model.ChartPayload{},
			ChartType:   model.ChartNone,
			Suggestions: []string{},
		}, nil
	}

	if period == "" {
		period = s.defaultPeriod
	}

	snapshot, err := s.market.GetSnapshot(ctx, ticker, period)
	if err != nil {
		s.logger.Warn("Market data fetch failed",
			zap.Error(err),
			zap.String("ticker", ticker),
			zap.String("period", period))
		return nil, err
	}

	classification := s.classifier.Classify(ctx, question, snapshot)
	payload := BuildChartPayload(classification.ChartKind, snapshot)

	result := &model.QueryResult{
		Answer:      classification.Answer,
		Data:        payload,
		ChartType:   classification.ChartKind,
		Suggestions: Suggestions(ticker, suggestionCount),
	}

	s.logInteraction(question, ticker, classification)

	return result, nil
}

// logInteraction records the exchange in the background. Failures must never
// fail or delay the response, so the write runs on a fresh short-lived context
// and errors are only logged.
func (s *QueryService) logInteraction(question, ticker string, classification model.Classification) {
	interaction := &model.Interaction{
		Question:  question,
		Ticker:    ticker,
		ChartType: string(classification.ChartKind),
		Answer:    classification.Answer,
		CreatedAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.logTimeout)
		defer cancel()

		if s.history != nil && s.history.Configured() {
			if err := s.history.Save(ctx, interaction); err != nil {
				s.logger.Debug("Failed to save interaction", zap.Error(err))
			}
		}

		if s.events != nil {
			if err := s.events.Publish(ctx, interaction); err != nil {
				s.logger.Debug("Failed to publish interaction event", zap.Error(err))
			}
		}
	}()
}

// stockDataWords flag chat questions that need a ticker to answer
var stockDataWords = []string{
	"price", "chart", "dividend", "volume", "trend", "performance", "history",
	"p/e", "market cap", "52-week", "52 week",
}

// Chat answers a free-form question without ticker context
func (s *QueryService) Chat(ctx context.Context, question string) *model.ChatResult {
	needsTicker := containsAny(strings.ToLower(question), stockDataWords)

	answer := s.classifier.GeneralAnswer(ctx, question, needsTicker)

	return &model.ChatResult{
		Answer:      answer,
		NeedsTicker: needsTicker,
		Suggestions: chatSuggestions,
	}
}
