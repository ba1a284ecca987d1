package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAgent()
	c.normalizeLogging()
	c.normalizeActuation()
	c.normalizeQueue()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalDir) == "" {
		c.Paths.JournalDir = defaultJournalDir
	}
	if c.Paths.JournalDir, err = expandPath(c.Paths.JournalDir); err != nil {
		return fmt.Errorf("paths.journal_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAgent() {
	c.Agent.Provider = strings.ToLower(strings.TrimSpace(c.Agent.Provider))
	if c.Agent.Provider == "" {
		c.Agent.Provider = defaultAgentProvider
	}
	if key, ok := os.LookupEnv("TUTORSYNC_AGENT_API_KEY"); ok && strings.TrimSpace(key) != "" {
		c.Agent.APIKey = strings.TrimSpace(key)
	}
	if strings.TrimSpace(c.Agent.BaseURL) == "" {
		c.Agent.BaseURL = defaultAgentBaseURL
	}
	if strings.TrimSpace(c.Agent.Model) == "" {
		c.Agent.Model = defaultAgentModel
	}
	if c.Agent.TimeoutSeconds <= 0 {
		c.Agent.TimeoutSeconds = defaultAgentTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeActuation() {
	if c.Actuation.VerifyPollCount <= 0 {
		c.Actuation.VerifyPollCount = defaultVerifyPollCount
	}
	if c.Actuation.VerifyPollIntervalMS <= 0 {
		c.Actuation.VerifyPollIntervalMS = defaultVerifyPollIntervalMS
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.MaxAttempts <= 0 {
		c.Queue.MaxAttempts = defaultQueueMaxAttempts
	}
	if c.Queue.RetryBaseDelayMS <= 0 {
		c.Queue.RetryBaseDelayMS = defaultQueueRetryBaseDelayMS
	}
	if c.Queue.RetryMaxDelayMS < c.Queue.RetryBaseDelayMS {
		c.Queue.RetryMaxDelayMS = defaultQueueRetryMaxDelayMS
	}
	if c.Queue.StabilizationDelayMS < 0 {
		c.Queue.StabilizationDelayMS = defaultQueueStabilizationDelayMS
	}
}
