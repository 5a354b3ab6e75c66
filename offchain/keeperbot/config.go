package keeperbot

import (
	"fmt"
	"os"
	"time"

	"cosmossdk.io/math"
	"gopkg.in/yaml.v3"
)

// Config holds the keeper bot configuration
type Config struct {
	PollInterval     time.Duration `yaml:"poll_interval"`     // How often due strategies are evaluated
	CheckInterval    time.Duration `yaml:"check_interval"`    // Delay before a strategy is checked again
	RetryDelay       time.Duration `yaml:"retry_delay"`       // Delay after a failed check or submission
	WebSocketURL     string        `yaml:"websocket_url"`     // CometBFT websocket for clone discovery, empty disables
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // Websocket dial timeout
	CallCost         string        `yaml:"call_cost"`         // Call cost passed to the triggers, in base units
	HarvestPolicy    string        `yaml:"harvest_policy"`    // Optional expr expression gating harvests
	MaxPerTick       int           `yaml:"max_per_tick"`      // Upper bound of strategies handled per poll
	Strategies       []string      `yaml:"strategies"`        // Strategies watched from startup
}

// DefaultConfig returns the default keeper bot configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:     5 * time.Second,
		CheckInterval:    time.Minute,
		RetryDelay:       15 * time.Second,
		WebSocketURL:     "",
		HandshakeTimeout: 10 * time.Second,
		CallCost:         "0",
		MaxPerTick:       50,
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, config.Validate()
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check_interval must be positive")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	if c.MaxPerTick <= 0 {
		return fmt.Errorf("max_per_tick must be positive")
	}
	if _, err := c.callCost(); err != nil {
		return err
	}
	return nil
}

func (c *Config) callCost() (math.Int, error) {
	if c.CallCost == "" {
		return math.ZeroInt(), nil
	}
	cost, ok := math.NewIntFromString(c.CallCost)
	if !ok || cost.IsNegative() {
		return math.Int{}, fmt.Errorf("invalid call_cost %q", c.CallCost)
	}
	return cost, nil
}
