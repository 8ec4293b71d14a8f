package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := testConfig()
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero interval", func(c *Config) { c.SyncIntervalSeconds = 0 }, "sync_interval_seconds"},
		{"zero history", func(c *Config) { c.HistoryCapacity = 0 }, "history_capacity"},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }, "retry_attempts"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"zero window", func(c *Config) { c.ReorderWindow = 0 }, "reorder_window"},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }, "queue_size"},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, "timeout_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, 300*time.Second, cfg.SyncInterval())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 600*time.Second, cfg.StaleAge())
}
