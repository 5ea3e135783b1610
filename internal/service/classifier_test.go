package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeModel is a canned AnswerModel for classifier tests
type fakeModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestParseModelReply(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantKind   model.ChartKind
		wantAnswer string
		wantOK     bool
	}{
		{
			name:       "well formed",
			reply:      "CHART_TYPE: candlestick\nANSWER: AAPL is trending upward.",
			wantKind:   model.ChartCandlestick,
			wantAnswer: "AAPL is trending upward.",
			wantOK:     true,
		},
		{
			name:       "unknown token defaults to none",
			reply:      "CHART_TYPE: pie\nANSWER: Not chartable.",
			wantKind:   model.ChartNone,
			wantAnswer: "Not chartable.",
			wantOK:     true,
		},
		{
			name:       "substring containment matches inside larger word",
			reply:      "CHART_TYPE: decline\nANSWER: The stock declined.",
			wantKind:   model.ChartLine,
			wantAnswer: "The stock declined.",
			wantOK:     true,
		},
		{
			name:       "missing chart label keeps raw text",
			reply:      "ANSWER: something without the other label",
			wantKind:   model.ChartNone,
			wantAnswer: "ANSWER: something without the other label",
			wantOK:     false,
		},
		{
			name:       "missing answer label keeps raw text",
			reply:      "CHART_TYPE: line",
			wantKind:   model.ChartNone,
			wantAnswer: "CHART_TYPE: line",
			wantOK:     false,
		},
		{
			name:       "no labels at all",
			reply:      "  Here is some prose.  ",
			wantKind:   model.ChartNone,
			wantAnswer: "Here is some prose.",
			wantOK:     false,
		},
		{
			name:       "case insensitive token",
			reply:      "CHART_TYPE: Volume\nANSWER: Volume rose.",
			wantKind:   model.ChartVolume,
			wantAnswer: "Volume rose.",
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, answer, ok := parseModelReply(tt.reply)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantAnswer, answer)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestClassifyUsesModelReply(t *testing.T) {
	fake := &fakeModel{reply: "CHART_TYPE: bar\nANSWER: Dividends have grown steadily."}
	c := NewClassifier(fake, zap.NewNop())

	result := c.Classify(context.Background(), "how are the dividends?", snapshotWithDividends(4))

	assert.Equal(t, model.ChartBar, result.ChartKind)
	assert.Equal(t, "Dividends have grown steadily.", result.Answer)
	assert.Equal(t, 1, fake.calls)
}

func TestClassifyFallsBackOnModelError(t *testing.T) {
	fake := &fakeModel{err: errors.New("deadline exceeded")}
	c := NewClassifier(fake, zap.NewNop())

	result := c.Classify(context.Background(), "show me the price trend", snapshotWithHistory(5))

	assert.Equal(t, model.ChartCandlestick, result.ChartKind)
	assert.Contains(t, result.Answer, "AAPL")
}

func TestFallbackCompanyInfo(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	snap := snapshotWithHistory(5)
	snap.MarketCap = 3000000000000
	snap.CurrentPrice = 189.50

	result := c.Classify(context.Background(), "Tell me about the company", snap)

	assert.Equal(t, model.ChartNone, result.ChartKind)
	assert.Contains(t, result.Answer, "Apple Inc.")
	assert.Contains(t, result.Answer, "Technology")
	assert.Contains(t, result.Answer, "3,000,000,000,000")
	assert.Contains(t, result.Answer, "189.50")
}

func TestFallbackPriceTrend(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	snap := &model.StockSnapshot{
		Ticker: "MSFT",
		History: []model.Candle{
			{Date: "2024-01-02", Close: 100},
			{Date: "2024-01-03", Close: 110},
		},
	}

	result := c.Classify(context.Background(), "show me the price trend", snap)

	assert.Equal(t, model.ChartCandlestick, result.ChartKind)
	assert.Contains(t, result.Answer, "$110.00")
	assert.Contains(t, result.Answer, "+10.00%")
}

func TestFallbackPriceTrendNoHistory(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	result := c.Classify(context.Background(), "price chart please", &model.StockSnapshot{Ticker: "MSFT"})

	assert.Equal(t, model.ChartNone, result.ChartKind)
	assert.Equal(t, "No price data available", result.Answer)
}

func TestFallbackDividends(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	snap := snapshotWithDividends(3)

	result := c.Classify(context.Background(), "What's the dividend history?", snap)

	require.Equal(t, model.ChartBar, result.ChartKind)
	last := snap.Dividends[len(snap.Dividends)-1]
	assert.Contains(t, result.Answer, last.Date)
}

func TestFallbackDividendsEmpty(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	snap := snapshotWithHistory(5)

	result := c.Classify(context.Background(), "What's the dividend history?", snap)

	assert.Equal(t, model.ChartNone, result.ChartKind)
	assert.Contains(t, result.Answer, "AAPL")
}

func TestFallbackVolume(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	result := c.Classify(context.Background(), "what is the trading volume?", snapshotWithHistory(4))

	assert.Equal(t, model.ChartVolume, result.ChartKind)
	assert.Contains(t, result.Answer, "shares")
}

func TestFallbackDefaultWithHistory(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	result := c.Classify(context.Background(), "what do you think?", snapshotWithHistory(5))

	assert.Equal(t, model.ChartLine, result.ChartKind)
	assert.Contains(t, result.Answer, "AAPL current price")
}

func TestFallbackDefaultWithoutHistory(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	result := c.Classify(context.Background(), "", &model.StockSnapshot{Ticker: "AAPL"})

	assert.Equal(t, model.ChartNone, result.ChartKind)
	assert.Equal(t, "Please ask about price, company info, dividends, or volume.", result.Answer)
}

func TestFallbackKeywordPriority(t *testing.T) {
	// Company words outrank performance words
	c := NewClassifier(nil, zap.NewNop())

	result := c.Classify(context.Background(), "info about the price history", snapshotWithHistory(5))

	assert.Equal(t, model.ChartNone, result.ChartKind)
}

func TestFallbackIdempotent(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())
	snap := snapshotWithDividends(6)

	first := c.Classify(context.Background(), "dividend outlook", snap)
	second := c.Classify(context.Background(), "dividend outlook", snap)

	assert.Equal(t, first, second)
}

func TestGeneralAnswerWithoutModel(t *testing.T) {
	c := NewClassifier(nil, zap.NewNop())

	answer := c.GeneralAnswer(context.Background(), "what's the best price to buy at?", true)
	assert.Contains(t, answer, "ticker")

	answer = c.GeneralAnswer(context.Background(), "hello", false)
	assert.Contains(t, answer, "assistant")
}
