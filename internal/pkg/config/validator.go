package config

import (
	"errors"

	"ticket-risk-scoring/internal/infrastructure/rules"
)

// Validate checks the configuration. Violations in the scoring section
// belong to the configuration error class: they are fatal at startup and
// reject a hot reload, so malformed weights are never seen per-request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	params := c.ScoringParams(0)
	if err := params.Weights.Validate(); err != nil {
		return err
	}
	if err := params.Thresholds.Validate(); err != nil {
		return err
	}
	if err := rules.ValidateWeights(params.RuleBase, params.RuleWeights); err != nil {
		return err
	}

	if c.Classifier.Timeout <= 0 {
		return errors.New("classifier timeout must be positive")
	}
	if c.Reasoning.Budget <= 0 {
		return errors.New("reasoning budget must be positive")
	}
	if c.Reasoning.TopK <= 0 {
		return errors.New("reasoning top_k must be positive")
	}

	return nil
}
