package model

// ChartKind selects which visualization shape a response's data conforms to
type ChartKind string

const (
	ChartCandlestick ChartKind = "candlestick"
	ChartLine        ChartKind = "line"
	ChartVolume      ChartKind = "volume"
	ChartBar         ChartKind = "bar"
	ChartNone        ChartKind = "none"
)

// ValidChartKinds lists the accepted chart kinds in matching priority order
var ValidChartKinds = []ChartKind{ChartCandlestick, ChartLine, ChartVolume, ChartBar, ChartNone}

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	Ticker   string `json:"ticker"`
	Period   string `json:"period"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Classification is the outcome of intent classification: which chart to
// render, if any, and the answer text to show
type Classification struct {
	ChartKind ChartKind
	Answer    string
}

// ChartPayload carries the arrays needed to draw one chart kind. Only the
// fields relevant to the kind are populated; an empty payload serializes as {}.
type ChartPayload struct {
	Dates     []string  `json:"dates,omitempty"`
	Open      []float64 `json:"open,omitempty"`
	High      []float64 `json:"high,omitempty"`
	Low       []float64 `json:"low,omitempty"`
	Close     []float64 `json:"close,omitempty"`
	Volume    []float64 `json:"volume,omitempty"`
	Dividends []float64 `json:"dividends,omitempty"`
}

// IsEmpty reports whether the payload carries no chart data
func (p ChartPayload) IsEmpty() bool {
	return len(p.Dates) == 0
}

// QueryResult is the response contract of POST /query
type QueryResult struct {
	Answer      string       `json:"answer"`
	Data        ChartPayload `json:"data"`
	ChartType   ChartKind    `json:"chart_type"`
	Suggestions []string     `json:"suggestions"`
}

// ChatResult is the response contract of POST /chat
type ChatResult struct {
	Answer      string   `json:"answer"`
	NeedsTicker bool     `json:"needs_ticker"`
	Suggestions []string `json:"suggestions"`
}
