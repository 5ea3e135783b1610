package model

// Candle represents one trading day of price and volume data
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Dividend represents a single dividend payment
type Dividend struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// StockSnapshot bundles all market data fetched for one ticker.
// It is built fresh per request and never mutated afterwards.
type StockSnapshot struct {
	Ticker           string     `json:"ticker"`
	CompanyName      string     `json:"company_name"`
	Sector           string     `json:"sector"`
	CurrentPrice     float64    `json:"current_price"`
	MarketCap        float64    `json:"market_cap"`
	FiftyTwoWeekHigh float64    `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64    `json:"fifty_two_week_low"`
	PERatio          *float64   `json:"pe_ratio"`
	DividendYield    float64    `json:"dividend_yield"`
	History          []Candle   `json:"history"`
	Dividends        []Dividend `json:"dividends"`
}

// LatestClose returns the most recent closing price, or 0 when no history exists
func (s *StockSnapshot) LatestClose() float64 {
	if len(s.History) == 0 {
		return 0
	}
	return s.History[len(s.History)-1].Close
}

// PeriodChangePct returns the percent change between the first and last close
// in the history window. Returns 0 when fewer than two rows are available.
func (s *StockSnapshot) PeriodChangePct() float64 {
	if len(s.History) < 2 {
		return 0
	}
	first := s.History[0].Close
	last := s.History[len(s.History)-1].Close
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// AverageVolume returns the mean trading volume over the history window
func (s *StockSnapshot) AverageVolume() float64 {
	if len(s.History) == 0 {
		return 0
	}
	var total float64
	for _, c := range s.History {
		total += c.Volume
	}
	return total / float64(len(s.History))
}

// StockSummary is a condensed view of one watchlist symbol for the
// market-overview endpoint
type StockSummary struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
}

// MarketOverview groups the top movers across the watchlist
type MarketOverview struct {
	Gainers []StockSummary `json:"gainers"`
	Losers  []StockSummary `json:"losers"`
	Active  []StockSummary `json:"active"`
}
