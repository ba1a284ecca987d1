package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	JournalDir string `toml:"journal_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Actuation contains configuration for verified playback actuation.
type Actuation struct {
	VerifyPollCount      int  `toml:"verify_poll_count"`
	VerifyPollIntervalMS int  `toml:"verify_poll_interval_ms"`
	MediaFallback        bool `toml:"media_fallback"`
	SyntheticInput       bool `toml:"synthetic_input"`
}

// Queue contains configuration for the serialized command queue.
type Queue struct {
	MaxAttempts          int `toml:"max_attempts"`
	RetryBaseDelayMS     int `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS      int `toml:"retry_max_delay_ms"`
	StabilizationDelayMS int `toml:"stabilization_delay_ms"`
}

// Agent contains configuration for the tutoring content service.
type Agent struct {
	// Provider selects the content backend: "template" (offline, deterministic)
	// or "llm" (remote chat-completion API).
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Sessions       bool   `toml:"sessions"`
	DeadLetters    bool   `toml:"dead_letters"`
	Errors         bool   `toml:"errors"`
}

// Journal contains configuration for the session journal.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for tutorsync.
//
// Configuration sections by subsystem:
//   - Paths: log and journal directories
//   - Logging: log format and level
//   - Actuation: playback verification polling and fallback strategies
//   - Queue: command retry budget, back-off, and stabilization delay
//   - Agent: tutoring content service (template or remote LLM)
//   - Notifications: ntfy push notification settings
//   - Journal: session journal persistence
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Actuation     Actuation     `toml:"actuation"`
	Queue         Queue         `toml:"queue"`
	Agent         Agent         `toml:"agent"`
	Notifications Notifications `toml:"notifications"`
	Journal       Journal       `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tutorsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tutorsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for session operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Journal.Enabled {
		dirs = append(dirs, c.Paths.JournalDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// AgentConfig contains resolved agent content service connection settings.
type AgentConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetAgent returns the agent content service settings.
func (c *Config) GetAgent() AgentConfig {
	return AgentConfig{
		Provider:       strings.TrimSpace(c.Agent.Provider),
		APIKey:         strings.TrimSpace(c.Agent.APIKey),
		BaseURL:        strings.TrimSpace(c.Agent.BaseURL),
		Model:          strings.TrimSpace(c.Agent.Model),
		Referer:        strings.TrimSpace(c.Agent.Referer),
		Title:          strings.TrimSpace(c.Agent.Title),
		TimeoutSeconds: c.Agent.TimeoutSeconds,
	}
}
