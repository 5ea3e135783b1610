package service

import (
	"github.com/yourorg/stock-chat-service/internal/model"
)

// maxDividendBars caps how many dividend entries the bar chart carries
const maxDividendBars = 10

// BuildChartPayload shapes the snapshot's series into the arrays needed to
// draw the given chart kind. It is a pure function: an empty payload is
// returned when the required series is empty or the kind is "none".
func BuildChartPayload(kind model.ChartKind, s *model.StockSnapshot) model.ChartPayload {
	var payload model.ChartPayload

	switch kind {
	case model.ChartCandlestick:
		if len(s.History) == 0 {
			return payload
		}
		payload.Dates = make([]string, 0, len(s.History))
		payload.Open = make([]float64, 0, len(s.History))
		payload.High = make([]float64, 0, len(s.History))
		payload.Low = make([]float64, 0, len(s.History))
		payload.Close = make([]float64, 0, len(s.History))
		payload.Volume = make([]float64, 0, len(s.History))
		for _, c := range s.History {
			payload.Dates = append(payload.Dates, c.Date)
			payload.Open = append(payload.Open, c.Open)
			payload.High = append(payload.High, c.High)
			payload.Low = append(payload.Low, c.Low)
			payload.Close = append(payload.Close, c.Close)
			payload.Volume = append(payload.Volume, c.Volume)
		}

	case model.ChartLine:
		if len(s.History) == 0 {
			return payload
		}
		payload.Dates = make([]string, 0, len(s.History))
		payload.Close = make([]float64, 0, len(s.History))
		for _, c := range s.History {
			payload.Dates = append(payload.Dates, c.Date)
			payload.Close = append(payload.Close, c.Close)
		}

	case model.ChartVolume:
		if len(s.History) == 0 {
			return payload
		}
		payload.Dates = make([]string, 0, len(s.History))
		payload.Volume = make([]float64, 0, len(s.History))
		for _, c := range s.History {
			payload.Dates = append(payload.Dates, c.Date)
			payload.Volume = append(payload.Volume, c.Volume)
		}

	case model.ChartBar:
		if len(s.Dividends) == 0 {
			return payload
		}
		recent := s.Dividends
		if len(recent) > maxDividendBars {
			recent = recent[len(recent)-maxDividendBars:]
		}
		payload.Dates = make([]string, 0, len(recent))
		payload.Dividends = make([]float64, 0, len(recent))
		for _, d := range recent {
			payload.Dates = append(payload.Dates, d.Date)
			payload.Dividends = append(payload.Dividends, d.Amount)
		}
	}

	return payload
}
