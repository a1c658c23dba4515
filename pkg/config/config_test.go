package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Strategy.HighThreshold != 0.8 || cfg.Strategy.MediumThreshold != 0.5 {
		t.Errorf("thresholds = %v/%v, want 0.8/0.5", cfg.Strategy.HighThreshold, cfg.Strategy.MediumThreshold)
	}
	if cfg.Strategy.DecisionTable != DefaultDecisionTable {
		t.Errorf("DecisionTable = %q", cfg.Strategy.DecisionTable)
	}
	if cfg.Recommend.DefaultK != 3 {
		t.Errorf("DefaultK = %d, want 3", cfg.Recommend.DefaultK)
	}
	if cfg.Similarity.RatingMin != 0 || cfg.Similarity.RatingMax != 5 {
		t.Errorf("rating range = [%v,%v], want [0,5]", cfg.Similarity.RatingMin, cfg.Similarity.RatingMax)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STRATEGY_HIGH_THRESHOLD", "0.9")
	t.Setenv("RECOMMEND_FALLBACK_THRESHOLD", "0.001")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Strategy.HighThreshold != 0.9 {
		t.Errorf("HighThreshold = %v, want 0.9", cfg.Strategy.HighThreshold)
	}
	if cfg.Recommend.FallbackThreshold != 0.001 {
		t.Errorf("FallbackThreshold = %v, want 0.001", cfg.Recommend.FallbackThreshold)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled = false, want true")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"JWT_SECRET": "", "DB_PASSWORD": "x"},
			wantErr: "missing jwt secret",
		},
		{
			name:    "bad float",
			env:     map[string]string{"JWT_SECRET": "s", "DB_PASSWORD": "x", "STRATEGY_MEDIUM_THRESHOLD": "half"},
			wantErr: "STRATEGY_MEDIUM_THRESHOLD",
		},
		{
			name:    "inverted rating range",
			env:     map[string]string{"JWT_SECRET": "s", "DB_PASSWORD": "x", "RATING_MIN": "5", "RATING_MAX": "1"},
			wantErr: "rating min",
		},
		{
			name:    "default k above max k",
			env:     map[string]string{"JWT_SECRET": "s", "DB_PASSWORD": "x", "RECOMMEND_DEFAULT_K": "10", "RECOMMEND_MAX_K": "5"},
			wantErr: "default k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
