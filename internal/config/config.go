// Package config loads runtime configuration from .bones.yaml, BONES_* env
// vars and CLI flags, in that order of increasing precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a bones process.
type Config struct {
	DataDir         string  `mapstructure:"data_dir"`
	ClaudePath      string  `mapstructure:"claude_path"`
	WorkDir         string  `mapstructure:"work_dir"`
	Model           string  `mapstructure:"model"`
	Verbose         bool    `mapstructure:"verbose"`
	ToolPort        int     `mapstructure:"tool_port"`
	RefereeTimeout  int     `mapstructure:"referee_timeout"`  // seconds per finding
	VerifierTimeout int     `mapstructure:"verifier_timeout"` // seconds per verification
	DisputeTimeout  int     `mapstructure:"dispute_timeout"`  // seconds per dispute
	MaxBudgetUSD    float64 `mapstructure:"max_budget_usd"`
}

// DefaultDataDir is the state directory used when BONES_DATA_DIR and the
// config file are both silent: a hidden folder under the user's home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bones"
	}
	return filepath.Join(home, ".bones")
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("data_dir", DefaultDataDir())
	viper.SetDefault("claude_path", "claude")
	viper.SetDefault("work_dir", ".")
	viper.SetDefault("model", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("tool_port", 8377)
	viper.SetDefault("referee_timeout", 120)
	viper.SetDefault("verifier_timeout", 90)
	viper.SetDefault("dispute_timeout", 90)
	viper.SetDefault("max_budget_usd", 0.0)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
