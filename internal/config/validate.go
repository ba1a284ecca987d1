package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateActuation(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateAgent(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateActuation() error {
	if c.Actuation.VerifyPollCount > 100 {
		return errors.New("actuation.verify_poll_count must be at most 100")
	}
	if c.Actuation.VerifyPollIntervalMS > 1000 {
		return errors.New("actuation.verify_poll_interval_ms must be at most 1000")
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.MaxAttempts > 10 {
		return errors.New("queue.max_attempts must be at most 10")
	}
	if c.Queue.RetryMaxDelayMS < c.Queue.RetryBaseDelayMS {
		return errors.New("queue.retry_max_delay_ms must be at least queue.retry_base_delay_ms")
	}
	return nil
}

func (c *Config) validateAgent() error {
	switch c.Agent.Provider {
	case "template":
		return nil
	case "llm":
	default:
		return fmt.Errorf("agent.provider must be \"template\" or \"llm\", got %q", c.Agent.Provider)
	}
	if c.Agent.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tutorsync/config.toml"
		}
		return fmt.Errorf("agent.api_key is required when agent.provider is \"llm\". Set TUTORSYNC_AGENT_API_KEY env var or edit %s (create with 'tutorsync config init')", defaultPath)
	}
	if strings.TrimSpace(c.Agent.BaseURL) == "" {
		return errors.New("agent.base_url must be set when agent.provider is \"llm\"")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if strings.TrimSpace(c.Notifications.NtfyTopic) == "" {
		return nil
	}
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must not be negative")
	}
	return nil
}
