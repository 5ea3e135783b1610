package service

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/yourorg/stock-chat-service/internal/model"

	"go.uber.org/zap"
)

const (
	// overviewPeriod only needs the latest two sessions, with slack for
	// weekends and holidays
	overviewPeriod     = "5d"
	overviewListSize   = 5
	overviewMaxWorkers = 8
)

// OverviewService computes the market-overview panel from a fixed watchlist
type OverviewService struct {
	market    MarketDataClient
	watchlist []string
	logger    *zap.Logger
}

// NewOverviewService creates a new overview service
func NewOverviewService(market MarketDataClient, watchlist []string, logger *zap.Logger) *OverviewService {
	return &OverviewService{
		market:    market,
		watchlist: watchlist,
		logger:    logger,
	}
}

// GetOverview fans out one fetch per watchlist symbol and groups the results
// into gainers, losers and most-active lists. A failing symbol is dropped from
// all three lists, never aborting the batch.
func (s *OverviewService) GetOverview(ctx context.Context) *model.MarketOverview {
	summaries := make([]model.StockSummary, 0, len(s.watchlist))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, overviewMaxWorkers)
	)

	for _, ticker := range s.watchlist {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summary, ok := s.summarize(ctx, ticker)
			if !ok {
				return
			}

			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	return &model.MarketOverview{
		Gainers: topGainers(summaries),
		Losers:  topLosers(summaries),
		Active:  mostActive(summaries),
	}
}

// summarize fetches one symbol and condenses the latest two sessions into a
// StockSummary. ok is false when the symbol has to be excluded.
func (s *OverviewService) summarize(ctx context.Context, ticker string) (model.StockSummary, bool) {
	snapshot, err := s.market.GetSnapshot(ctx, ticker, overviewPeriod)
	if err != nil {
		s.logger.Warn("Excluding symbol from overview",
			zap.Error(err),
			zap.String("ticker", ticker))
		return model.StockSummary{}, false
	}

	history := snapshot.History
	if len(history) < 2 {
		s.logger.Debug("Excluding symbol with short history",
			zap.String("ticker", ticker),
			zap.Int("rows", len(history)))
		return model.StockSummary{}, false
	}

	last := history[len(history)-1]
	prev := history[len(history)-2]
	change := last.Close - prev.Close

	var changePct float64
	if prev.Close != 0 {
		changePct = change / prev.Close * 100
	}

	return model.StockSummary{
		Ticker:    snapshot.Ticker,
		Name:      snapshot.CompanyName,
		Price:     round2(last.Close),
		Change:    round2(change),
		ChangePct: round2(changePct),
		Volume:    int64(last.Volume),
	}, true
}

func topGainers(summaries []model.StockSummary) []model.StockSummary {
	gainers := filter(summaries, func(s model.StockSummary) bool { return s.ChangePct > 0 })
	sort.Slice(gainers, func(i, j int) bool { return gainers[i].ChangePct > gainers[j].ChangePct })
	return head(gainers, overviewListSize)
}

func topLosers(summaries []model.StockSummary) []model.StockSummary {
	losers := filter(summaries, func(s model.StockSummary) bool { return s.ChangePct < 0 })
	sort.Slice(losers, func(i, j int) bool { return losers[i].ChangePct < losers[j].ChangePct })
	return head(losers, overviewListSize)
}

func mostActive(summaries []model.StockSummary) []model.StockSummary {
	active := make([]model.StockSummary, len(summaries))
	copy(active, summaries)
	sort.Slice(active, func(i, j int) bool { return active[i].Volume > active[j].Volume })
	return head(active, overviewListSize)
}

func filter(summaries []model.StockSummary, keep func(model.StockSummary) bool) []model.StockSummary {
	out := make([]model.StockSummary, 0, len(summaries))
	for _, s := range summaries {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func head(summaries []model.StockSummary, n int) []model.StockSummary {
	if len(summaries) > n {
		return summaries[:n]
	}
	return summaries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
