package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMarketClient returns a canned snapshot and counts calls
type fakeMarketClient struct {
	snapshot *model.StockSnapshot
	err      error
	calls    int
}

func (f *fakeMarketClient) GetSnapshot(ctx context.Context, ticker, period string) (*model.StockSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

// fakeHistoryStore records saves on a channel so async writes can be awaited
type fakeHistoryStore struct {
	saved      chan *model.Interaction
	saveCalls  int
	configured bool
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{saved: make(chan *model.Interaction, 4), configured: true}
}

func (f *fakeHistoryStore) Configured() bool { return f.configured }

func (f *fakeHistoryStore) Save(ctx context.Context, interaction *model.Interaction) error {
	f.saveCalls++
	f.saved <- interaction
	return nil
}

func (f *fakeHistoryStore) List(ctx context.Context, limit int) ([]model.Interaction, error) {
	return nil, nil
}

func newTestQueryService(market MarketDataClient, history HistoryStore) *QueryService {
	classifier := NewClassifier(nil, zap.NewNop())
	return NewQueryService(market, classifier, history, nil, "1mo", time.Second, zap.NewNop())
}

func TestAnswerMissingTicker(t *testing.T) {
	market := &fakeMarketClient{snapshot: snapshotWithHistory(5)}
	history := newFakeHistoryStore()
	svc := newTestQueryService(market, history)

	result, err := svc.Answer(context.Background(), "how is the market?", "", "")

	require.NoError(t, err)
	assert.Equal(t, TickerPromptAnswer, result.Answer)
	assert.Equal(t, model.ChartNone, result.ChartType)
	assert.True(t, result.Data.IsEmpty())
	assert.Empty(t, result.Suggestions)

	// No collaborator is touched on the short-circuit path
	assert.Equal(t, 0, market.calls)
	assert.Equal(t, 0, history.saveCalls)
}

func TestAnswerWhitespaceTicker(t *testing.T) {
	market := &fakeMarketClient{snapshot: snapshotWithHistory(5)}
	svc := newTestQueryService(market, nil)

	result, err := svc.Answer(context.Background(), "anything", "   ", "1mo")

	require.NoError(t, err)
	assert.Equal(t, TickerPromptAnswer, result.Answer)
	assert.Equal(t, 0, market.calls)
}

func TestAnswerSuccess(t *testing.T) {
	market := &fakeMarketClient{snapshot: snapshotWithHistory(5)}
	history := newFakeHistoryStore()
	svc := newTestQueryService(market, history)

	result, err := svc.Answer(context.Background(), "show me the price trend", "AAPL", "")

	require.NoError(t, err)
	assert.Equal(t, model.ChartCandlestick, result.ChartType)
	assert.Len(t, result.Data.Dates, 5)
	assert.Len(t, result.Data.Close, 5)
	assert.Equal(t, 1, market.calls)

	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, "What is AAPL's P/E ratio?", result.Suggestions[0])
	assert.Equal(t, "Show me AAPL's dividend history", result.Suggestions[1])
	assert.Equal(t, "How has AAPL performed over the past year?", result.Suggestions[2])
	assert.Equal(t, "How does AAPL compare to its 52-week high and low?", result.Suggestions[3])

	// The interaction is logged asynchronously
	select {
	case interaction := <-history.saved:
		assert.Equal(t, "AAPL", interaction.Ticker)
		assert.Equal(t, "candlestick", interaction.ChartType)
		assert.Equal(t, "show me the price trend", interaction.Question)
	case <-time.After(2 * time.Second):
		t.Fatal("interaction was never saved")
	}
}

func TestAnswerGatewayFailure(t *testing.T) {
	market := &fakeMarketClient{err: errors.New("upstream unavailable")}
	history := newFakeHistoryStore()
	svc := newTestQueryService(market, history)

	result, err := svc.Answer(context.Background(), "price?", "NOPE", "1mo")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, history.saveCalls)
}

func TestAnswerUnconfiguredHistorySkipped(t *testing.T) {
	market := &fakeMarketClient{snapshot: snapshotWithHistory(3)}
	history := newFakeHistoryStore()
	history.configured = false
	svc := newTestQueryService(market, history)

	_, err := svc.Answer(context.Background(), "volume?", "AAPL", "1mo")
	require.NoError(t, err)

	select {
	case <-history.saved:
		t.Fatal("save should not be called on an unconfigured store")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestAnswerDefaultPeriod(t *testing.T) {
	var gotPeriod string
	market := &recordingMarketClient{
		snapshot: snapshotWithHistory(3),
		record:   func(ticker, period string) { gotPeriod = period },
	}
	svc := newTestQueryService(market, nil)

	_, err := svc.Answer(context.Background(), "price?", "AAPL", "")

	require.NoError(t, err)
	assert.Equal(t, "1mo", gotPeriod)
}

// recordingMarketClient captures the arguments of each fetch
type recordingMarketClient struct {
	snapshot *model.StockSnapshot
	record   func(ticker, period string)
}

func (r *recordingMarketClient) GetSnapshot(ctx context.Context, ticker, period string) (*model.StockSnapshot, error) {
	r.record(ticker, period)
	return r.snapshot, nil
}

func TestChatNeedsTicker(t *testing.T) {
	svc := newTestQueryService(&fakeMarketClient{}, nil)

	result := svc.Chat(context.Background(), "What's the price trend looking like?")

	assert.True(t, result.NeedsTicker)
	assert.NotEmpty(t, result.Answer)
	assert.NotEmpty(t, result.Suggestions)
	assert.LessOrEqual(t, len(result.Suggestions), 4)
}

func TestChatGeneralQuestion(t *testing.T) {
	svc := newTestQueryService(&fakeMarketClient{}, nil)

	result := svc.Chat(context.Background(), "hello there")

	assert.False(t, result.NeedsTicker)
	assert.NotEmpty(t, result.Answer)
}
