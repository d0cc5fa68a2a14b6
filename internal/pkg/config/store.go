package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ticket-risk-scoring/internal/domain/scoring"
)

// Store holds the current scoring parameters behind an atomic pointer.
// A reload validates the new configuration first and then swaps the
// whole Params value in one step, so a request either sees the old
// version or the new one, never a partial update. Each successful swap
// bumps the version recorded on results for auditability.
type Store struct {
	current atomic.Pointer[scoring.Params]
	version atomic.Int64
}

// NewStore creates a store seeded with the validated startup config.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.version.Store(1)
	s.current.Store(cfg.ScoringParams(1))
	return s
}

// Params returns the current immutable parameter snapshot. Callers keep
// the returned pointer for the whole request.
func (s *Store) Params() *scoring.Params {
	return s.current.Load()
}

// Reload validates the new configuration and swaps it in. On validation
// failure the previous parameters stay in effect.
func (s *Store) Reload(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	version := int(s.version.Add(1))
	s.current.Store(cfg.ScoringParams(version))
	return nil
}

// Watch re-reads configuration whenever the config file changes and
// atomically applies valid updates. Invalid files are rejected with a
// log line and the running config is untouched.
func Watch(v *viper.Viper, store *Store, logger *zap.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg := DefaultConfig()
		if err := v.Unmarshal(cfg); err != nil {
			logger.Error("config reload failed to parse, keeping previous version",
				zap.String("file", e.Name), zap.Error(err))
			return
		}
		if err := store.Reload(cfg); err != nil {
			logger.Error("config reload rejected, keeping previous version",
				zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("scoring configuration reloaded",
			zap.String("file", e.Name), zap.Int("version", store.Params().Version))
	})
	v.WatchConfig()
}
