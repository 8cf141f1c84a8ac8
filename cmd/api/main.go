package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "review_analyzer/internal/adapters/http_server"
	"review_analyzer/internal/adapters/observability"
	redisad "review_analyzer/internal/adapters/redis"
	"review_analyzer/internal/adapters/sentiment"
	"review_analyzer/internal/app"
	"review_analyzer/internal/domain"
	"review_analyzer/internal/shared"
	"review_analyzer/internal/storage/dataset"
	"review_analyzer/internal/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	locs, err := dataset.LoadLocationsFile(cfg.LocationsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LocationsFile).Msg("load locations failed")
	}
	log.Info().Int("locations", locs.Len()).Msg("locations loaded")

	repo := openStore(ctx, cfg)

	// deps
	q := app.NewQueryService(repo, sentiment.NewVader(), locs, cfg.ScoringWorkers)
	c := app.NewCommandService(repo, locs, clockwork.NewRealClock())

	// http
	srv := server.New(server.Options{
		Timeout:      cfg.RequestTimeout,
		RateLimitRPS: cfg.RateLimitRPS,
		CORSOrigins:  cfg.CORSOrigins,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c, MaxBodyBytes: cfg.MaxBodyBytes})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("shutdown complete")
}

func openStore(ctx context.Context, cfg shared.Config) domain.ReviewRepository {
	if cfg.Backend == shared.BackendRedis {
		rs := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisKey)
		if err := rs.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		n, err := rs.Len(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("redis review count failed")
		}
		log.Info().Str("backend", cfg.Backend).Int("reviews", n).Msg("review store ready")
		return rs
	}

	reviews, err := dataset.LoadReviewsFile(cfg.ReviewsCSV)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ReviewsCSV).Msg("load reviews failed")
	}
	log.Info().Str("backend", cfg.Backend).Int("reviews", len(reviews)).Msg("review store ready")
	return memory.New(reviews)
}
