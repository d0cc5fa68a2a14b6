package config

import (
	"time"

	"github.com/shopspring/decimal"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	FeatureStore FeatureStoreConfig `mapstructure:"feature_store"`
	Scoring      ScoringConfig      `mapstructure:"scoring"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
	Reasoning    ReasoningConfig    `mapstructure:"reasoning"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL configuration for result persistence.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// FeatureStoreConfig holds the Redis feature store connection plus the
// in-process snapshot cache bounds.
type FeatureStoreConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheSize    int           `mapstructure:"cache_size"`
}

// ScoringConfig holds the ensemble parameters: rule weights, engine
// weights and tier thresholds. These are hot-reloadable; see Store.
type ScoringConfig struct {
	RuleBase    float64            `mapstructure:"rule_base"`
	RuleWeights map[string]float64 `mapstructure:"rule_weights"`

	RuleWeight       float64 `mapstructure:"rule_weight"`
	ClassifierWeight float64 `mapstructure:"classifier_weight"`
	ReasoningWeight  float64 `mapstructure:"reasoning_weight"`

	TierLowFloor    float64 `mapstructure:"tier_low_floor"`
	TierMediumFloor float64 `mapstructure:"tier_medium_floor"`
	TierHighFloor   float64 `mapstructure:"tier_high_floor"`

	// InlineReasoning controls whether the reasoning engine is awaited
	// inline (slow path, up to its budget) or skipped for a fast
	// rule+classifier result. A product choice, not a correctness one.
	InlineReasoning bool `mapstructure:"inline_reasoning"`
}

// ClassifierConfig holds the model-serving backend settings.
type ClassifierConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FraudPolarity bool          `mapstructure:"fraud_polarity"`
	FeatureSubset []string      `mapstructure:"feature_subset"`
}

// ReasoningConfig holds the reasoning backend and similarity search
// settings.
type ReasoningConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Budget        time.Duration `mapstructure:"budget"`
	SearchURL     string        `mapstructure:"search_url"`
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	TopK          int           `mapstructure:"top_k"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "risk_user",
			Password:        "",
			Name:            "ticket_risk",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		FeatureStore: FeatureStoreConfig{
			Host:         "localhost",
			Port:         6379,
			DB:           0,
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			CacheTTL:     time.Minute,
			CacheSize:    1024,
		},
		Scoring: ScoringConfig{
			RuleBase: 1000,
			RuleWeights: map[string]float64{
				"refund_request_rate":  200,
				"chargeback_count":     150,
				"account_age_penalty":  100,
				"ticket_burst_rate":    120,
				"prior_override_count": 80,
			},
			RuleWeight:       0.50,
			ClassifierWeight: 0.25,
			ReasoningWeight:  0.25,
			TierLowFloor:     800,
			TierMediumFloor:  600,
			TierHighFloor:    300,
			InlineReasoning:  true,
		},
		Classifier: ClassifierConfig{
			BaseURL:       "http://localhost:8501",
			Timeout:       500 * time.Millisecond,
			FraudPolarity: true,
		},
		Reasoning: ReasoningConfig{
			BaseURL:       "http://localhost:8502",
			Budget:        3 * time.Second,
			SearchURL:     "http://localhost:8503",
			SearchTimeout: time.Second,
			TopK:          5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ScoringParams converts the scoring section into the immutable Params
// value engines and the combiner read per request. It assumes Validate
// has already passed.
func (c *Config) ScoringParams(version int) *scoring.Params {
	ruleWeights := make(map[string]decimal.Decimal, len(c.Scoring.RuleWeights))
	for name, w := range c.Scoring.RuleWeights {
		ruleWeights[name] = decimal.NewFromFloat(w)
	}
	return &scoring.Params{
		Version:     version,
		RuleBase:    decimal.NewFromFloat(c.Scoring.RuleBase),
		RuleWeights: ruleWeights,
		Weights: scoring.WeightConfig{
			Rule:       decimal.NewFromFloat(c.Scoring.RuleWeight),
			Classifier: decimal.NewFromFloat(c.Scoring.ClassifierWeight),
			Reasoning:  decimal.NewFromFloat(c.Scoring.ReasoningWeight),
		},
		Thresholds: scoring.TierThresholds{
			LowFloor:    decimal.NewFromFloat(c.Scoring.TierLowFloor),
			MediumFloor: decimal.NewFromFloat(c.Scoring.TierMediumFloor),
			HighFloor:   decimal.NewFromFloat(c.Scoring.TierHighFloor),
		},
	}
}
