package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTimeout = 5 * time.Minute
)

// DefaultConfig returns a configuration with default values and no endpoints
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if len(c.Sequences) == 0 {
		c.Sequences = append([]string(nil), AllSequences...)
	}
}
