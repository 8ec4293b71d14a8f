package reconcile

import (
	"fmt"
	"time"
)

// Config holds configuration for the reconciliation engine.
type Config struct {
	// SyncIntervalSeconds is the period of the full resync cycle.
	SyncIntervalSeconds int `mapstructure:"sync_interval_seconds" default:"300"`
	// HistoryCapacity is the per-asset transaction history ring size.
	HistoryCapacity int `mapstructure:"history_capacity" default:"256"`
	// Realtime enables live ledger feed ingestion.
	Realtime bool `mapstructure:"realtime" default:"true"`
	// RetryAttempts bounds retries of failed ledger/datastore calls.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// BatchSize bounds how many assets are loaded or synced concurrently.
	BatchSize int `mapstructure:"batch_size" default:"16"`
	// ReorderWindow is the per-asset buffer for out-of-order feed events.
	// A gap that outgrows it forces a full resync of the asset.
	ReorderWindow int `mapstructure:"reorder_window" default:"64"`
	// QueueSize is the bounded per-subscriber event queue length.
	QueueSize int `mapstructure:"queue_size" default:"128"`
	// TimeoutSeconds bounds every single network call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// SyncInterval returns the resync period as a duration.
func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

// Timeout returns the per-call network budget as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StaleAge is the age past which a cached state counts as stale:
// two missed sync cycles.
func (c Config) StaleAge() time.Duration {
	return 2 * c.SyncInterval()
}

// Validate checks the configuration and returns a ConfigurationError for
// the first invalid field. Configuration errors are fatal at startup.
func (c Config) Validate() error {
	switch {
	case c.SyncIntervalSeconds <= 0:
		return &ConfigurationError{Field: "sync_interval_seconds", Reason: "must be positive"}
	case c.HistoryCapacity <= 0:
		return &ConfigurationError{Field: "history_capacity", Reason: "must be positive"}
	case c.RetryAttempts < 1:
		return &ConfigurationError{Field: "retry_attempts", Reason: "must be at least 1"}
	case c.BatchSize < 1:
		return &ConfigurationError{Field: "batch_size", Reason: "must be at least 1"}
	case c.ReorderWindow < 1:
		return &ConfigurationError{Field: "reorder_window", Reason: "must be at least 1"}
	case c.QueueSize < 1:
		return &ConfigurationError{Field: "queue_size", Reason: "must be at least 1"}
	case c.TimeoutSeconds <= 0:
		return &ConfigurationError{Field: "timeout_seconds", Reason: "must be positive"}
	}
	return nil
}

// ConfigurationError reports an invalid engine configuration field.
type ConfigurationError struct {
	// Field is the offending configuration key.
	Field string
	// Reason describes the constraint that failed.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}
