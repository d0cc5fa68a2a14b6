package scoring

import "errors"

var (
	// Configuration errors - fatal at startup, never per-request
	ErrInvalidWeights    = errors.New("invalid engine weights")
	ErrInvalidThresholds = errors.New("invalid tier thresholds")
	ErrInvalidRuleConfig = errors.New("invalid rule weight configuration")

	// Backend errors - converted to sub-score statuses at the client
	// boundary, never propagated past the orchestrator
	ErrBackendTimeout = errors.New("backend call exceeded budget")
	ErrBackendError   = errors.New("backend returned malformed or error response")

	// ErrSnapshotUnavailable signals the feature store had no snapshot;
	// callers treat it as neutral all-zero features, not a failure.
	ErrSnapshotUnavailable = errors.New("feature snapshot unavailable")

	// ErrEnsembleUnavailable is the hard failure when zero engines
	// produced a usable sub-score. It is surfaced to the caller as a
	// distinct outcome, never mapped to a numeric score.
	ErrEnsembleUnavailable = errors.New("scoring unavailable: no engine produced a usable sub-score")

	// Result errors
	ErrResultNotFound = errors.New("ensemble result not found")
)
