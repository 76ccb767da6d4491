package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Tab           TabConfig           `yaml:"tab"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds the operator API listener configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// DQPolicy selects how a disqualification rewrites historical rounds.
type DQPolicy string

const (
	// DQRetroactive converts every round involving the DQ'd registration into
	// a loss for it and a win for the opponent.
	DQRetroactive DQPolicy = "retroactive"
	// DQForwardOnly zeroes the DQ'd registration's record without crediting
	// past opponents.
	DQForwardOnly DQPolicy = "forward_only"
)

// TabConfig holds tabulation policy knobs. The fuzzy-match bands are tunable
// heuristics, not load-bearing constants.
type TabConfig struct {
	MatchExactThreshold float64       `yaml:"match_exact_threshold"`
	MatchGoodThreshold  float64       `yaml:"match_good_threshold"`
	DQPolicy            DQPolicy      `yaml:"dq_policy"`
	RecomputeDebounce   time.Duration `yaml:"recompute_debounce"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is absent. Env vars override the file.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("TAB_DQ_POLICY"); v != "" {
		cfg.Tab.DQPolicy = DQPolicy(v)
	}
	if v := os.Getenv("TAB_RECOMPUTE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Tab.RecomputeDebounce = d
		}
	}
	if v := os.Getenv("TAB_MATCH_EXACT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tab.MatchExactThreshold = f
		}
	}
	if v := os.Getenv("TAB_MATCH_GOOD_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tab.MatchGoodThreshold = f
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Tab.MatchExactThreshold == 0 {
		c.Tab.MatchExactThreshold = 0.95
	}
	if c.Tab.MatchGoodThreshold == 0 {
		c.Tab.MatchGoodThreshold = 0.80
	}
	if c.Tab.DQPolicy == "" {
		c.Tab.DQPolicy = DQRetroactive
	}
	if c.Tab.RecomputeDebounce == 0 {
		// Standings lag inputs by at most this long between recomputes.
		c.Tab.RecomputeDebounce = 30 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}
	if c.Tab.DQPolicy != DQRetroactive && c.Tab.DQPolicy != DQForwardOnly {
		return fmt.Errorf("invalid tab.dq_policy %q", c.Tab.DQPolicy)
	}
	if c.Tab.MatchGoodThreshold > c.Tab.MatchExactThreshold {
		return fmt.Errorf("tab.match_good_threshold must not exceed tab.match_exact_threshold")
	}
	return nil
}
