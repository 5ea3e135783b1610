package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// watchlistMarketClient serves per-ticker snapshots for overview tests
type watchlistMarketClient struct {
	snapshots map[string]*model.StockSnapshot
}

func (w *watchlistMarketClient) GetSnapshot(ctx context.Context, ticker, period string) (*model.StockSnapshot, error) {
	snap, ok := w.snapshots[ticker]
	if !ok {
		return nil, errors.New("no data")
	}
	return snap, nil
}

func twoDaySnapshot(ticker string, prevClose, lastClose, lastVolume float64) *model.StockSnapshot {
	return &model.StockSnapshot{
		Ticker:      ticker,
		CompanyName: ticker + " Inc.",
		History: []model.Candle{
			{Date: "2024-03-01", Close: prevClose, Volume: lastVolume / 2},
			{Date: "2024-03-04", Close: lastClose, Volume: lastVolume},
		},
	}
}

func TestGetOverviewGroupsAndSorts(t *testing.T) {
	market := &watchlistMarketClient{snapshots: map[string]*model.StockSnapshot{
		"UP1": twoDaySnapshot("UP1", 100, 105, 3000),  // +5%
		"UP2": twoDaySnapshot("UP2", 100, 112, 9000),  // +12%
		"DN1": twoDaySnapshot("DN1", 100, 97, 5000),   // -3%
		"DN2": twoDaySnapshot("DN2", 100, 91, 1000),   // -9%
		"FLT": twoDaySnapshot("FLT", 100, 100, 20000), // unchanged
	}}
	watchlist := []string{"UP1", "UP2", "DN1", "DN2", "FLT", "ERR"}
	svc := NewOverviewService(market, watchlist, zap.NewNop())

	overview := svc.GetOverview(context.Background())

	require.Len(t, overview.Gainers, 2)
	assert.Equal(t, "UP2", overview.Gainers[0].Ticker)
	assert.Equal(t, "UP1", overview.Gainers[1].Ticker)

	require.Len(t, overview.Losers, 2)
	assert.Equal(t, "DN2", overview.Losers[0].Ticker)
	assert.Equal(t, "DN1", overview.Losers[1].Ticker)

	// Most active is volume-ranked and includes the unchanged symbol
	require.Len(t, overview.Active, 5)
	assert.Equal(t, "FLT", overview.Active[0].Ticker)
	assert.Equal(t, "UP2", overview.Active[1].Ticker)

	// The failing symbol appears nowhere
	for _, list := range [][]model.StockSummary{overview.Gainers, overview.Losers, overview.Active} {
		for _, s := range list {
			assert.NotEqual(t, "ERR", s.Ticker)
		}
	}
}

func TestGetOverviewExcludesShortHistory(t *testing.T) {
	short := &model.StockSnapshot{
		Ticker:  "ONE",
		History: []model.Candle{{Date: "2024-03-04", Close: 50, Volume: 100}},
	}
	market := &watchlistMarketClient{snapshots: map[string]*model.StockSnapshot{
		"ONE": short,
		"OK":  twoDaySnapshot("OK", 10, 11, 500),
	}}
	svc := NewOverviewService(market, []string{"ONE", "OK"}, zap.NewNop())

	overview := svc.GetOverview(context.Background())

	require.Len(t, overview.Active, 1)
	assert.Equal(t, "OK", overview.Active[0].Ticker)
	assert.Empty(t, overview.Losers)
	require.Len(t, overview.Gainers, 1)
	assert.Equal(t, "OK", overview.Gainers[0].Ticker)
}

func TestGetOverviewRounding(t *testing.T) {
	market := &watchlistMarketClient{snapshots: map[string]*model.StockSnapshot{
		"RND": twoDaySnapshot("RND", 3, 3.14159, 1234.9),
	}}
	svc := NewOverviewService(market, []string{"RND"}, zap.NewNop())

	overview := svc.GetOverview(context.Background())

	require.Len(t, overview.Gainers, 1)
	s := overview.Gainers[0]
	assert.Equal(t, 3.14, s.Price)
	assert.Equal(t, 0.14, s.Change)
	assert.Equal(t, 4.72, s.ChangePct)
	assert.Equal(t, int64(1234), s.Volume)
}

func TestGetOverviewCapsListsAtFive(t *testing.T) {
	snapshots := make(map[string]*model.StockSnapshot)
	watchlist := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		ticker := fmt.Sprintf("G%d", i)
		snapshots[ticker] = twoDaySnapshot(ticker, 100, 101+float64(i), float64(1000*i))
		watchlist = append(watchlist, ticker)
	}
	svc := NewOverviewService(&watchlistMarketClient{snapshots: snapshots}, watchlist, zap.NewNop())

	overview := svc.GetOverview(context.Background())

	assert.Len(t, overview.Gainers, 5)
	assert.Len(t, overview.Active, 5)
	assert.Equal(t, "G7", overview.Gainers[0].Ticker)
}
