package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Similarity SimilarityConfig
	Recommend  RecommendConfig
	Strategy   StrategyConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	// RebuildOnStart computes the first similarity snapshot during boot.
	RebuildOnStart bool
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	DirectiveTTL  time.Duration
}

type SimilarityConfig struct {
	RatingMin  float64
	RatingMax  float64
	MinSupport int
	Workers    int
}

type RecommendConfig struct {
	DefaultK          int
	MaxK              int
	RecentItems       int
	FallbackThreshold float64
}

type StrategyConfig struct {
	HighThreshold   float64
	MediumThreshold float64
	// DecisionTable is a comma separated list of band:fallback=action entries.
	DecisionTable string
}

const DefaultDecisionTable = "high:false=high_value_bundle,medium:false=cross_sell,low:false=inventory_monitor,low:true=popularity_push"

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	p := parser{errs: &errs}

	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Reco Insight API"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			RebuildOnStart: p.boolean("APP_REBUILD_ON_START", true),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: p.duration("SERVER_REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "reco_insight"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Enabled:       p.boolean("REDIS_ENABLED", false),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       p.integer("REDIS_DB", 0),
			DirectiveTTL:  p.duration("REDIS_DIRECTIVE_TTL", 15*time.Minute),
		},
		Similarity: SimilarityConfig{
			RatingMin:  p.float("RATING_MIN", 0),
			RatingMax:  p.float("RATING_MAX", 5),
			MinSupport: p.integer("SIMILARITY_MIN_SUPPORT", 1),
			Workers:    p.integer("SIMILARITY_WORKERS", 4),
		},
		Recommend: RecommendConfig{
			DefaultK:          p.integer("RECOMMEND_DEFAULT_K", 3),
			MaxK:              p.integer("RECOMMEND_MAX_K", 50),
			RecentItems:       p.integer("RECOMMEND_RECENT_ITEMS", 5),
			FallbackThreshold: p.float("RECOMMEND_FALLBACK_THRESHOLD", 1e-9),
		},
		Strategy: StrategyConfig{
			HighThreshold:   p.float("STRATEGY_HIGH_THRESHOLD", 0.8),
			MediumThreshold: p.float("STRATEGY_MEDIUM_THRESHOLD", 0.5),
			DecisionTable:   getEnv("STRATEGY_DECISION_TABLE", DefaultDecisionTable),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Similarity.RatingMin >= cfg.Similarity.RatingMax {
		return nil, errors.New("rating min must be lower than rating max")
	}

	if cfg.Recommend.DefaultK <= 0 || cfg.Recommend.MaxK < cfg.Recommend.DefaultK {
		return nil, errors.New("recommend default k must be positive and not above max k")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

// parser collects conversion errors so Load reports every bad variable at once.
type parser struct {
	errs *[]error
}

func (p parser) fail(key, val string, err error) {
	*p.errs = append(*p.errs, fmt.Errorf("invalid %s=%q: %w", key, val, err))
}

func (p parser) integer(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, err)
		return def
	}
	return n
}

func (p parser) float(key string, def float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.fail(key, val, err)
		return def
	}
	return f
}

func (p parser) boolean(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, val, err)
		return def
	}
	return b
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, err)
		return def
	}
	return d
}
