package domain

import (
	"context"
	"time"
)

// ReviewRepository is the append-only review store.
type ReviewRepository interface {
	// Append adds exactly one review at the end of the store.
	Append(ctx context.Context, r Review) error
	// List returns a snapshot of all reviews in insertion order. Callers may not mutate it.
	List(ctx context.Context) ([]Review, error)
	Len(ctx context.Context) (int, error)
}

// SentimentScorer turns text into a polarity summary.
type SentimentScorer interface {
	Score(text string) Sentiment
}

// FilterQuery selects reviews. Zero values mean "no condition".
type FilterQuery struct {
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
}

// NewReview is a submission before validation.
type NewReview struct {
	ReviewBody string
	Location   string
}
