package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lockedin/go-focus-monitor/internal/classifier"
	"github.com/lockedin/go-focus-monitor/internal/core/buffer"
	"github.com/lockedin/go-focus-monitor/internal/core/escalation"
)

// DefaultInterval is the capture cadence.
const DefaultInterval = 15 * time.Second

// Config contains configuration for a monitoring session.
type Config struct {
	// Data directories
	DataDir        string
	ProfilesDir    string
	SessionsDir    string
	ScreenshotsDir string

	// Capture settings
	Interval       time.Duration
	BufferCapacity int

	// Component configuration
	Escalation escalation.Config
	Ollama     classifier.OllamaConfig
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		c.DataDir = "~/.go-focus-monitor"
	}
	if c.ProfilesDir == "" {
		c.ProfilesDir = filepath.Join(c.DataDir, "profiles")
	}
	if c.SessionsDir == "" {
		c.SessionsDir = filepath.Join(c.DataDir, "sessions")
	}
	if c.ScreenshotsDir == "" {
		c.ScreenshotsDir = filepath.Join(c.DataDir, "screenshots")
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %v", c.Interval)
	}
	if c.BufferCapacity == 0 {
		c.BufferCapacity = buffer.DefaultCapacity
	}
	if c.BufferCapacity < 1 {
		return fmt.Errorf("buffer_capacity must be positive, got %d", c.BufferCapacity)
	}
	if err := c.Escalation.Validate(); err != nil {
		return err
	}
	return c.Ollama.Validate()
}

// fileConfig is the YAML shape of the optional config file. Durations
// are strings in Go duration syntax ("15s", "2m").
type fileConfig struct {
	Interval       string `yaml:"interval"`
	BufferCapacity int    `yaml:"buffer_capacity"`

	Escalation struct {
		MaxLevel     int                       `yaml:"max_level"`
		Thresholds   []int                     `yaml:"thresholds"`
		DecayTimeout string                    `yaml:"decay_timeout"`
		Messages     []escalation.LevelMessage `yaml:"messages"`
	} `yaml:"escalation"`

	Ollama struct {
		BaseURL  string `yaml:"base_url"`
		Model    string `yaml:"model"`
		Timeout  string `yaml:"timeout"`
		TextOnly bool   `yaml:"text_only"`
	} `yaml:"ollama"`
}

// LoadConfigFile merges settings from a YAML file into the config. A
// missing file is not an error; the defaults stand.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Interval != "" {
		d, err := time.ParseDuration(fc.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", fc.Interval, err)
		}
		c.Interval = d
	}
	if fc.BufferCapacity != 0 {
		c.BufferCapacity = fc.BufferCapacity
	}

	if fc.Escalation.MaxLevel != 0 {
		c.Escalation.MaxLevel = fc.Escalation.MaxLevel
	}
	if len(fc.Escalation.Thresholds) > 0 {
		c.Escalation.Thresholds = fc.Escalation.Thresholds
	}
	if fc.Escalation.DecayTimeout != "" {
		d, err := time.ParseDuration(fc.Escalation.DecayTimeout)
		if err != nil {
			return fmt.Errorf("invalid decay_timeout %q: %w", fc.Escalation.DecayTimeout, err)
		}
		c.Escalation.DecayTimeout = d
	}
	if len(fc.Escalation.Messages) > 0 {
		c.Escalation.Messages = fc.Escalation.Messages
	}

	if fc.Ollama.BaseURL != "" {
		c.Ollama.BaseURL = fc.Ollama.BaseURL
	}
	if fc.Ollama.Model != "" {
		c.Ollama.Model = fc.Ollama.Model
	}
	if fc.Ollama.Timeout != "" {
		d, err := time.ParseDuration(fc.Ollama.Timeout)
		if err != nil {
			return fmt.Errorf("invalid ollama timeout %q: %w", fc.Ollama.Timeout, err)
		}
		c.Ollama.Timeout = d
	}
	if fc.Ollama.TextOnly {
		c.Ollama.TextOnly = true
	}

	return nil
}
