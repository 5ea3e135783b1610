package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/stock-chat-service/internal/model"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// AnswerModel is the generative-model capability used by the classifier's
// primary strategy. A nil AnswerModel means the classifier runs on keyword
// matching alone.
type AnswerModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier maps a free-text question plus a stock snapshot to a chart kind
// and an answer. It never fails outward: any model error degrades to the
// deterministic keyword strategy.
type Classifier struct {
	model  AnswerModel
	logger *zap.Logger
}

// NewClassifier creates a new intent classifier. model may be nil.
func NewClassifier(model AnswerModel, logger *zap.Logger) *Classifier {
	return &Classifier{
		model:  model,
		logger: logger,
	}
}

// Classify decides which chart to render and what answer to show
func (c *Classifier) Classify(ctx context.Context, question string, snapshot *model.StockSnapshot) model.Classification {
	if c.model == nil {
		return c.fallbackClassify(question, snapshot)
	}

	reply, err := c.model.Generate(ctx, buildPrompt(question, snapshot))
	if err != nil {
		c.logger.Warn("Generative model call failed, using keyword fallback",
			zap.Error(err),
			zap.String("ticker", snapshot.Ticker))
		return c.fallbackClassify(question, snapshot)
	}

	kind, answer, ok := parseModelReply(reply)
	if !ok {
		// Labels missing: keep the model's text but render no chart
		return model.Classification{ChartKind: model.ChartNone, Answer: answer}
	}

	return model.Classification{ChartKind: kind, Answer: answer}
}

// buildPrompt assembles the context handed to the generative model
func buildPrompt(question string, s *model.StockSnapshot) string {
	peRatio := "N/A"
	if s.PERatio != nil {
		peRatio = fmt.Sprintf("%.2f", *s.PERatio)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial assistant analyzing stock data for %s.\n\n", s.Ticker)
	b.WriteString("Available data:\n")
	fmt.Fprintf(&b, "- Company: %s\n", s.CompanyName)
	fmt.Fprintf(&b, "- Sector: %s\n", s.Sector)
	fmt.Fprintf(&b, "- Current Price: $%.2f\n", s.CurrentPrice)
	fmt.Fprintf(&b, "- Market Cap: $%s\n", humanize.Comma(int64(s.MarketCap)))
	fmt.Fprintf(&b, "- 52 Week High: $%.2f\n", s.FiftyTwoWeekHigh)
	fmt.Fprintf(&b, "- 52 Week Low: $%.2f\n", s.FiftyTwoWeekLow)
	fmt.Fprintf(&b, "- P/E Ratio: %s\n", peRatio)
	fmt.Fprintf(&b, "- Dividend Yield: %.2f%%\n", s.DividendYield*100)
	fmt.Fprintf(&b, "- Change over selected period: %+.2f%%\n", s.PeriodChangePct())
	fmt.Fprintf(&b, "- Average volume: %s shares\n", humanize.Comma(int64(s.AverageVolume())))
	fmt.Fprintf(&b, "- Pays dividends: %t\n", len(s.Dividends) > 0)
	fmt.Fprintf(&b, "\nRecent price data available: %d days\n", len(s.History))
	fmt.Fprintf(&b, "\nUser question: %s\n", question)
	b.WriteString(`
Based on the question, determine:
1. What type of chart to show: "candlestick", "line", "volume", "bar", or "none"
2. A brief, informative answer (2-3 sentences max)

Respond in this exact format:
CHART_TYPE: [type]
ANSWER: [your answer]
`)
	return b.String()
}

// parseModelReply locates the two fixed labels in the model's reply and
// extracts the chart-kind token and answer text. The third return value is
// false when either label is missing; the reply text is then returned as the
// answer unchanged. The chart-kind token is matched by substring containment
// against the valid kinds in priority order, so a token containing "decline"
// resolves to "line".
func parseModelReply(reply string) (model.ChartKind, string, bool) {
	reply = strings.TrimSpace(reply)
	if !strings.Contains(reply, "CHART_TYPE:") || !strings.Contains(reply, "ANSWER:") {
		return model.ChartNone, reply, false
	}

	parts := strings.SplitN(reply, "ANSWER:", 2)
	chartPart := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(parts[0], "CHART_TYPE:", "")))
	answer := strings.TrimSpace(parts[1])

	kind := model.ChartNone
	for _, valid := range model.ValidChartKinds {
		if strings.Contains(chartPart, string(valid)) {
			kind = valid
			break
		}
	}

	return kind, answer, true
}

var (
	companyWords     = []string{"info", "about", "company", "details", "sector", "business"}
	performanceWords = []string{"price", "chart", "history", "trend", "performance"}
)

// fallbackClassify is the deterministic keyword strategy used when the
// generative model is unavailable or fails
func (c *Classifier) fallbackClassify(question string, s *model.StockSnapshot) model.Classification {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, companyWords):
		answer := fmt.Sprintf("%s operates in the %s sector. Market Cap: $%s. Current Price: $%.2f",
			s.CompanyName, s.Sector, humanize.Comma(int64(s.MarketCap)), s.CurrentPrice)
		return model.Classification{ChartKind: model.ChartNone, Answer: answer}

	case containsAny(q, performanceWords):
		if len(s.History) == 0 {
			return model.Classification{ChartKind: model.ChartNone, Answer: "No price data available"}
		}
		answer := fmt.Sprintf("%s is currently at $%.2f, %+.2f%% change in the selected period.",
			s.Ticker, s.LatestClose(), s.PeriodChangePct())
		return model.Classification{ChartKind: model.ChartCandlestick, Answer: answer}

	case strings.Contains(q, "dividend"):
		if len(s.Dividends) == 0 {
			answer := fmt.Sprintf("%s has no dividend history or doesn't pay dividends.", s.Ticker)
			return model.Classification{ChartKind: model.ChartNone, Answer: answer}
		}
		latest := s.Dividends[len(s.Dividends)-1]
		answer := fmt.Sprintf("Latest dividend: $%.2f on %s", latest.Amount, latest.Date)
		return model.Classification{ChartKind: model.ChartBar, Answer: answer}

	case strings.Contains(q, "volume"):
		if len(s.History) == 0 {
			return model.Classification{ChartKind: model.ChartNone, Answer: "No volume data available"}
		}
		answer := fmt.Sprintf("%s average trading volume: %s shares",
			s.Ticker, humanize.Comma(int64(s.AverageVolume())))
		return model.Classification{ChartKind: model.ChartVolume, Answer: answer}

	default:
		if len(s.History) == 0 {
			return model.Classification{
				ChartKind: model.ChartNone,
				Answer:    "Please ask about price, company info, dividends, or volume.",
			}
		}
		answer := fmt.Sprintf("%s current price: $%.2f. Ask me about price trends, company info, dividends, or volume!",
			s.Ticker, s.LatestClose())
		return model.Classification{ChartKind: model.ChartLine, Answer: answer}
	}
}

// GeneralAnswer produces a short reply for questions asked without a ticker.
// The generative model is used when configured; otherwise a canned guidance
// string is returned.
func (c *Classifier) GeneralAnswer(ctx context.Context, question string, needsTicker bool) string {
	if c.model != nil {
		prompt := "You are a stock market assistant. Answer the following question in 2-3 sentences. " +
			"If the question is about a specific stock's data, ask the user to provide a ticker symbol.\n\n" +
			"Question: " + question
		reply, err := c.model.Generate(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(reply)
		}
		c.logger.Warn("Generative model call failed for chat", zap.Error(err))
	}

	if needsTicker {
		return "I can help with that. Tell me which ticker you're interested in (e.g., AAPL, MSFT) and ask again."
	}
	return "I'm a stock market assistant. Ask me about a company's price, dividends, volume, or fundamentals, and include a ticker symbol for specifics."
}

// containsAny checks substring containment, matching the keyword semantics of
// the fallback branches ("pricey" matches "price")
func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
