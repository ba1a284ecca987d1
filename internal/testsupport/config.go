package testsupport

import (
	"path/filepath"
	"testing"

	"tutorsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Retry and stabilization delays are collapsed so queue tests drain fast.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalDir = filepath.Join(base, "journal")
	cfg.Queue.RetryBaseDelayMS = 1
	cfg.Queue.RetryMaxDelayMS = 2
	cfg.Queue.StabilizationDelayMS = 0
	cfg.Actuation.VerifyPollIntervalMS = 1
	cfg.Actuation.VerifyPollCount = 3

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
