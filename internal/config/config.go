// Package config loads and validates the execution core's configuration:
// physical register counts, free-pool sizes, endianness, and the FPE bit's
// startup state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the execution core's tunable parameters.
type Config struct {
	// Register file sizing.
	NumIntPhysRegs int   `yaml:"numIntPhysRegs"`
	NumFPPhysRegs  int   `yaml:"numFPPhysRegs"`
	UnmappedReg    uint8 `yaml:"unmappedReg"`

	// Issue queue free-pool sizing.
	EBoxPoolSize int `yaml:"eBoxPoolSize"`
	FBoxPoolSize int `yaml:"fBoxPoolSize"`

	// Memory addressing and the FP converter.
	BigEndian bool `yaml:"bigEndian"`

	// IPR initial state.
	FPEnabledAtStartup bool `yaml:"fpEnabledAtStartup"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// validateConfig checks if the configuration is valid.
func validateConfig(cfg *Config) error {
	if cfg.NumIntPhysRegs <= 0 {
		return fmt.Errorf("number of integer physical registers must be positive")
	}
	if cfg.NumFPPhysRegs <= 0 {
		return fmt.Errorf("number of FP physical registers must be positive")
	}
	if int(cfg.UnmappedReg) >= cfg.NumIntPhysRegs || int(cfg.UnmappedReg) >= cfg.NumFPPhysRegs {
		return fmt.Errorf("unmapped register index %d out of range for register file sizes %d/%d",
			cfg.UnmappedReg, cfg.NumIntPhysRegs, cfg.NumFPPhysRegs)
	}
	if cfg.EBoxPoolSize <= 0 {
		return fmt.Errorf("eBox pool size must be positive")
	}
	if cfg.FBoxPoolSize <= 0 {
		return fmt.Errorf("fBox pool size must be positive")
	}

	return nil
}

// DefaultConfig returns a default configuration modeled on the Alpha 21264:
// 80 integer and 72 FP physical registers, register 31 unmapped.
func DefaultConfig() *Config {
	return &Config{
		NumIntPhysRegs: 80,
		NumFPPhysRegs:  72,
		UnmappedReg:    31,

		EBoxPoolSize: 32,
		FBoxPoolSize: 16,

		BigEndian: false,

		FPEnabledAtStartup: true,
	}
}
