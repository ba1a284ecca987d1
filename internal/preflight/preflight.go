package preflight

import (
	"context"

	"tutorsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", cfg.Paths.JournalDir))
		results = append(results, CheckFreeSpace("Journal free space", cfg.Paths.JournalDir, minJournalFreeBytes))
	}

	if cfg.Agent.Provider == "llm" {
		results = append(results, CheckAgentService(ctx, cfg.GetAgent()))
	}

	return results
}

// Passed reports whether every result succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
