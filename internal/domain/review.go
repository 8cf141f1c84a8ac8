package domain

import "time"

// Stored timestamps and query dates share these layouts.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

type Review struct {
	ReviewBody string `json:"ReviewBody"`
	Location   string `json:"Location"`
	Timestamp  string `json:"Timestamp"` // TimestampLayout, whole seconds
	ReviewId   string `json:"ReviewId"`
}

// Time parses the stored timestamp.
func (r Review) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, r.Timestamp)
}

// Sentiment is a VADER-style polarity summary. Compound is the ranking key.
type Sentiment struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// ScoredReview is a review as returned by a filter query. It is never stored.
type ScoredReview struct {
	Review
	Sentiment Sentiment `json:"sentiment"`
}

func FormatTimestamp(t time.Time) string { return t.Format(TimestampLayout) }
