package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	ReviewsCSV     string
	LocationsFile  string
	Backend        string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	RedisKey       string
	ScoringWorkers int
	RateLimitRPS   int
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("var", k).Str("value", v).Int("default", def).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       ":" + env("PORT", "8000"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		ReviewsCSV:     env("REVIEWS_CSV", "data/reviews.csv"),
		LocationsFile:  env("LOCATIONS_FILE", "data/locations.txt"),
		Backend:        strings.ToLower(env("REVIEW_BACKEND", BackendMemory)),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisKey:       env("REDIS_KEY", "reviews"),
		ScoringWorkers: atoi("SCORING_WORKERS", 8),
		RateLimitRPS:   atoi("RATE_LIMIT_RPS", 0),
		MaxBodyBytes:   int64(atoi("MAX_BODY_BYTES", 1<<20)),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		CORSOrigins:    splitList(env("CORS_ORIGINS", "*")),
	}
	if c.Backend != BackendMemory && c.Backend != BackendRedis {
		log.Warn().Str("backend", c.Backend).Msg("unknown REVIEW_BACKEND, using memory")
		c.Backend = BackendMemory
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
