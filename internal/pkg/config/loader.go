package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables. The
// returned viper instance can be handed to Watch for hot reload.
func Load(configPath string) (*Config, *viper.Viper, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Config file not found is ok - we use defaults and env vars
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("RISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, v, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)

	v.SetDefault("feature_store.host", cfg.FeatureStore.Host)
	v.SetDefault("feature_store.port", cfg.FeatureStore.Port)
	v.SetDefault("feature_store.db", cfg.FeatureStore.DB)
	v.SetDefault("feature_store.pool_size", cfg.FeatureStore.PoolSize)
	v.SetDefault("feature_store.cache_ttl", cfg.FeatureStore.CacheTTL)
	v.SetDefault("feature_store.cache_size", cfg.FeatureStore.CacheSize)

	v.SetDefault("scoring.rule_base", cfg.Scoring.RuleBase)
	v.SetDefault("scoring.rule_weights", cfg.Scoring.RuleWeights)
	v.SetDefault("scoring.rule_weight", cfg.Scoring.RuleWeight)
	v.SetDefault("scoring.classifier_weight", cfg.Scoring.ClassifierWeight)
	v.SetDefault("scoring.reasoning_weight", cfg.Scoring.ReasoningWeight)
	v.SetDefault("scoring.tier_low_floor", cfg.Scoring.TierLowFloor)
	v.SetDefault("scoring.tier_medium_floor", cfg.Scoring.TierMediumFloor)
	v.SetDefault("scoring.tier_high_floor", cfg.Scoring.TierHighFloor)
	v.SetDefault("scoring.inline_reasoning", cfg.Scoring.InlineReasoning)

	v.SetDefault("classifier.base_url", cfg.Classifier.BaseURL)
	v.SetDefault("classifier.timeout", cfg.Classifier.Timeout)
	v.SetDefault("classifier.fraud_polarity", cfg.Classifier.FraudPolarity)

	v.SetDefault("reasoning.base_url", cfg.Reasoning.BaseURL)
	v.SetDefault("reasoning.budget", cfg.Reasoning.Budget)
	v.SetDefault("reasoning.search_url", cfg.Reasoning.SearchURL)
	v.SetDefault("reasoning.search_timeout", cfg.Reasoning.SearchTimeout)
	v.SetDefault("reasoning.top_k", cfg.Reasoning.TopK)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
