// Command ingestor loads the review CSV into the Redis store used by REVIEW_BACKEND=redis.
// The list is replaced atomically, so running API replicas never see a partial load.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"review_analyzer/internal/adapters/observability"
	redisad "review_analyzer/internal/adapters/redis"
	"review_analyzer/internal/shared"
	"review_analyzer/internal/storage/dataset"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("csv", cfg.ReviewsCSV).
		Str("redis", cfg.RedisAddr).
		Str("key", cfg.RedisKey).
		Msg("ingestor starting")

	reviews, err := dataset.LoadReviewsFile(cfg.ReviewsCSV)
	if err != nil {
		log.Fatal().Err(err).Msg("load reviews failed")
	}

	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisKey)
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	if err := store.Replace(ctx, reviews); err != nil {
		log.Fatal().Err(err).Msg("replace reviews failed")
	}
	log.Info().Int("reviews", len(reviews)).Msg("ingestion completed")
}
