package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

type QueryService struct {
	repo      domain.ReviewRepository
	scorer    domain.SentimentScorer
	locations domain.LocationSet
	workers   int
}

func NewQueryService(r domain.ReviewRepository, s domain.SentimentScorer, locs domain.LocationSet, workers int) *QueryService {
	if workers <= 0 {
		workers = 1
	}
	return &QueryService{repo: r, scorer: s, locations: locs, workers: workers}
}

// ValidateLocation accepts the empty string (no filter) and any known location.
func (s *QueryService) ValidateLocation(loc string) error {
	if loc != "" && !s.locations.Contains(loc) {
		return domain.ErrInvalidLocation
	}
	return nil
}

// FilterReviews returns the reviews matching q, scored and ordered by compound descending.
// Reviews with equal compound keep their store order.
func (s *QueryService) FilterReviews(ctx context.Context, q domain.FilterQuery) ([]domain.ScoredReview, error) {
	if err := s.ValidateLocation(q.Location); err != nil {
		return nil, err
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	matched := make([]domain.Review, 0, len(all))
	for _, r := range all {
		ok, err := matches(r, q)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r)
		}
	}

	out, err := s.score(ctx, matched)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sentiment.Compound > out[j].Sentiment.Compound
	})
	return out, nil
}

func matches(r domain.Review, q domain.FilterQuery) (bool, error) {
	if q.Location != "" && r.Location != q.Location {
		return false, nil
	}
	if q.StartDate == nil && q.EndDate == nil {
		return true, nil
	}
	ts, err := r.Time()
	if err != nil {
		return false, fmt.Errorf("review %s has malformed timestamp %q: %w", r.ReviewId, r.Timestamp, err)
	}
	if q.StartDate != nil && ts.Before(*q.StartDate) {
		return false, nil
	}
	if q.EndDate != nil && ts.After(*q.EndDate) {
		return false, nil
	}
	return true, nil
}

// score runs the scorer over rs on a bounded worker group; each result lands in its own slot.
func (s *QueryService) score(ctx context.Context, rs []domain.Review) ([]domain.ScoredReview, error) {
	out := make([]domain.ScoredReview, len(rs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range rs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out[i] = domain.ScoredReview{Review: rs[i], Sentiment: s.scorer.Score(rs[i].ReviewBody)}
			observability.ObserveScoring(time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
