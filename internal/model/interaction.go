package model

import "time"

// Interaction is one logged question/answer exchange. Persistence is
// best-effort: a failed write is dropped, never surfaced to the caller.
type Interaction struct {
	ID        int64     `json:"id,omitempty" db:"id"`
	Question  string    `json:"question" db:"question"`
	Ticker    string    `json:"ticker" db:"ticker"`
	ChartType string    `json:"chart_type" db:"chart_type"`
	Answer    string    `json:"answer" db:"answer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
