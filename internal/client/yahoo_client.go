package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	YahooAPIBaseURL = "https://query1.finance.yahoo.com"

	// Yahoo rejects requests without a browser-looking User-Agent
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxChartRetries = 2
)

// YahooClient handles communication with the Yahoo Finance public API
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(baseURL string, timeout time.Duration, logger *zap.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = YahooAPIBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// chartResponse is the shape of the Yahoo v8 chart API response
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// rawValue is Yahoo's {raw, fmt} number wrapper used by quoteSummary
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// quoteSummaryResponse is the subset of the v10 quoteSummary response we read
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
				TrailingPE       rawValue `json:"trailingPE"`
				DividendYield    rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// quoteResponse is the shape of the lightweight v7 quote endpoint used as a
// fallback when quoteSummary is unavailable
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			LongName           string  `json:"longName"`
			ShortName          string  `json:"shortName"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
			MarketCap          float64 `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// GetSnapshot fetches daily history, fundamentals and the dividend series for
// one ticker. Fundamentals degrade through a fallback chain; the call only
// fails when neither history nor any quote data can be obtained.
func (c *YahooClient) GetSnapshot(ctx context.Context, ticker, period string) (*model.StockSnapshot, error) {
	snapshot := &model.StockSnapshot{
		Ticker:      ticker,
		CompanyName: ticker,
		Sector:      "N/A",
	}

	history, dividends, histErr := c.fetchChart(ctx, ticker, period)
	if histErr != nil {
		c.logger.Warn("Failed to fetch price history",
			zap.Error(histErr),
			zap.String("ticker", ticker),
			zap.String("period", period))
	}
	snapshot.History = history
	snapshot.Dividends = dividends

	infoErr := c.fetchQuoteSummary(ctx, ticker, snapshot)
	if infoErr != nil {
		c.logger.Warn("quoteSummary unavailable, trying quote endpoint",
			zap.Error(infoErr),
			zap.String("ticker", ticker))
		infoErr = c.fetchQuote(ctx, ticker, snapshot)
	}

	if histErr != nil && infoErr != nil {
		return nil, fmt.Errorf("unable to fetch data for %s: %w", ticker, histErr)
	}

	// Metadata may lack a price; fall back to the last close
	if snapshot.CurrentPrice == 0 && len(snapshot.History) > 0 {
		snapshot.CurrentPrice = snapshot.LatestClose()
	}

	return snapshot, nil
}

// fetchChart retrieves daily OHLCV history plus dividend events. The request
// is retried with exponential backoff since the chart endpoint is the one
// Yahoo throttles most aggressively.
func (c *YahooClient) fetchChart(ctx context.Context, ticker, period string) ([]model.Candle, []model.Dividend, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s&events=div",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(period))

	var chart chartResponse
	operation := func() error {
		return c.getJSON(ctx, reqURL, &chart)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxChartRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, nil, fmt.Errorf("chart API error: %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("no chart data returned for %s", ticker)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			// Yahoo emits null rows for halted or partial sessions
			continue
		}
		candles = append(candles, model.Candle{
			Date:   time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Open:   deref(quote.Open, i),
			High:   deref(quote.High, i),
			Low:    deref(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: deref(quote.Volume, i),
		})
	}

	dividends := make([]model.Dividend, 0, len(result.Events.Dividends))
	for _, d := range result.Events.Dividends {
		dividends = append(dividends, model.Dividend{
			Date:   time.Unix(d.Date, 0).UTC().Format("2006-01-02"),
			Amount: d.Amount,
		})
	}
	// The events block is a map keyed by timestamp; restore chronological order
	sort.Slice(dividends, func(i, j int) bool {
		return dividends[i].Date < dividends[j].Date
	})

	return candles, dividends, nil
}

// fetchQuoteSummary fills fundamentals from the v10 quoteSummary endpoint
func (c *YahooClient) fetchQuoteSummary(ctx context.Context, ticker string, snapshot *model.StockSnapshot) error {
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,assetProfile",
		c.baseURL, url.PathEscape(ticker))

	var summary quoteSummaryResponse
	if err := c.getJSON(ctx, reqURL, &summary); err != nil {
		return fmt.Errorf("failed to fetch quote summary: %w", err)
	}

	if summary.QuoteSummary.Error != nil {
		return fmt.Errorf("quoteSummary API error: %s", summary.QuoteSummary.Error.Code)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return fmt.Errorf("empty quoteSummary result for %s", ticker)
	}

	result := summary.QuoteSummary.Result[0]
	if result.Price.LongName != "" {
		snapshot.CompanyName = result.Price.LongName
	} else if result.Price.ShortName != "" {
		snapshot.CompanyName = result.Price.ShortName
	}
	if result.AssetProfile.Sector != "" {
		snapshot.Sector = result.AssetProfile.Sector
	}
	if result.Price.RegularMarketPrice.Raw != nil {
		snapshot.CurrentPrice = *result.Price.RegularMarketPrice.Raw
	}
	if result.Price.MarketCap.Raw != nil {
		snapshot.MarketCap = *result.Price.MarketCap.Raw
	}
	if result.SummaryDetail.FiftyTwoWeekHigh.Raw != nil {
		snapshot.FiftyTwoWeekHigh = *result.SummaryDetail.FiftyTwoWeekHigh.Raw
	}
	if result.SummaryDetail.FiftyTwoWeekLow.Raw != nil {
		snapshot.FiftyTwoWeekLow = *result.SummaryDetail.FiftyTwoWeekLow.Raw
	}
	if result.SummaryDetail.TrailingPE.Raw != nil {
		pe := *result.SummaryDetail.TrailingPE.Raw
		snapshot.PERatio = &pe
	}
	if result.SummaryDetail.DividendYield.Raw != nil {
		snapshot.DividendYield = *result.SummaryDetail.DividendYield.Raw
	}

	return nil
}

// fetchQuote fills the minimal fundamentals set from the v7 quote endpoint
func (c *YahooClient) fetchQuote(ctx context.Context, ticker string, snapshot *model.StockSnapshot) error {
	reqURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))

	var quote quoteResponse
	if err := c.getJSON(ctx, reqURL, &quote); err != nil {
		return fmt.Errorf("failed to fetch quote: %w", err)
	}

	if len(quote.QuoteResponse.Result) == 0 {
		return fmt.Errorf("empty quote result for %s", ticker)
	}

	result := quote.QuoteResponse.Result[0]
	if result.LongName != "" {
		snapshot.CompanyName = result.LongName
	} else if result.ShortName != "" {
		snapshot.CompanyName = result.ShortName
	}
	snapshot.CurrentPrice = result.RegularMarketPrice
	snapshot.MarketCap = result.MarketCap

	return nil
}

// getJSON performs a GET request and decodes the JSON response into out
func (c *YahooClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch from Yahoo Finance",
			zap.Error(err),
			zap.String("url", reqURL))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("Yahoo API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return fmt.Errorf("Yahoo API returned status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func deref(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
