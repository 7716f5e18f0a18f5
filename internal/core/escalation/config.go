package escalation

import (
	"fmt"
	"time"
)

const (
	// DefaultMaxLevel is the most assertive escalation level.
	DefaultMaxLevel = 3
	// DefaultDecayTimeout is how long the engine waits without a level
	// change before stepping the level back toward baseline.
	DefaultDecayTimeout = 60 * time.Second
)

// LevelMessage is the message and tone delivered at one escalation level.
type LevelMessage struct {
	Message string `yaml:"message" json:"message"`
	Tone    string `yaml:"tone" json:"tone"`
}

// Config tunes the escalation state machine. Thresholds and messages are
// indexed by the level being entered (thresholds[0] guards 0->1).
type Config struct {
	MaxLevel     int            `yaml:"max_level" json:"max_level"`
	Thresholds   []int          `yaml:"thresholds" json:"thresholds"`
	DecayTimeout time.Duration  `yaml:"decay_timeout" json:"decay_timeout"`
	Messages     []LevelMessage `yaml:"messages" json:"messages"`
}

// DefaultConfig returns the stock escalation tuning: three levels, three
// consecutive distractions per level, one minute of decay.
func DefaultConfig() Config {
	return Config{
		MaxLevel:     DefaultMaxLevel,
		Thresholds:   []int{3, 3, 3},
		DecayTimeout: DefaultDecayTimeout,
		Messages: []LevelMessage{
			{Message: "Looks like you drifted off. Ready to get back to it?", Tone: "gentle"},
			{Message: "You have been off track for a while now. Time to refocus.", Tone: "firm"},
			{Message: "Stop procrastinating! Focus on your work!", Tone: "assertive"},
		},
	}
}

// Validate fills zero values with defaults and rejects inconsistent
// settings.
func (c *Config) Validate() error {
	defaults := DefaultConfig()
	if c.MaxLevel == 0 {
		c.MaxLevel = defaults.MaxLevel
	}
	if c.MaxLevel < 1 {
		return fmt.Errorf("max_level must be at least 1, got %d", c.MaxLevel)
	}
	if len(c.Thresholds) == 0 {
		c.Thresholds = defaults.Thresholds
	}
	if len(c.Thresholds) < c.MaxLevel {
		// Pad with the last configured threshold.
		last := c.Thresholds[len(c.Thresholds)-1]
		for len(c.Thresholds) < c.MaxLevel {
			c.Thresholds = append(c.Thresholds, last)
		}
	}
	prev := 0
	for i, th := range c.Thresholds {
		if th < 1 {
			return fmt.Errorf("threshold for level %d must be positive, got %d", i+1, th)
		}
		if th < prev {
			return fmt.Errorf("thresholds must be non-decreasing, got %v", c.Thresholds)
		}
		prev = th
	}
	if c.DecayTimeout == 0 {
		c.DecayTimeout = defaults.DecayTimeout
	}
	if c.DecayTimeout < 0 {
		return fmt.Errorf("decay_timeout must be positive, got %v", c.DecayTimeout)
	}
	if len(c.Messages) == 0 {
		c.Messages = defaults.Messages
	}
	return nil
}

// threshold returns the consecutive-distraction count required to leave
// the given level.
func (c Config) threshold(level int) int {
	if level >= len(c.Thresholds) {
		return c.Thresholds[len(c.Thresholds)-1]
	}
	return c.Thresholds[level]
}

// message returns the message/tone for entering the given level.
func (c Config) message(level int) LevelMessage {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.Messages) {
		idx = len(c.Messages) - 1
	}
	return c.Messages[idx]
}
