// Package config loads the simulator's run configuration: CLI-flag
// defaults optionally overridden by a named YAML file.
//
// Grounded on internal/config.go's viper-based LoadConfig (NovaSqlConfig
// unmarshaled via mapstructure tags), generalized from a database's
// storage/server settings to the simulator's memory/algorithm settings.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the fully resolved set of simulator parameters, independent
// of whether a value came from a flag default, an explicit flag, or a
// YAML override.
type Config struct {
	TracePath    string `mapstructure:"trace"`
	RAMMB        int    `mapstructure:"ram_mb"`
	PageSize     int    `mapstructure:"page_size"`
	SwapMB       int    `mapstructure:"swap_mb"`
	VSpaceMB     int    `mapstructure:"vspace_mb"`
	Algorithm    string `mapstructure:"algorithm"`
	TLBSize      int    `mapstructure:"tlb_size"`
	TLBPolicy    string `mapstructure:"tlb_policy"`
	PTType       string `mapstructure:"pt_type"`
	MaxAccesses  uint64 `mapstructure:"max_accesses"`
	Seed         int64  `mapstructure:"seed"`
	OutputPath   string `mapstructure:"output"`
	CSVPath      string `mapstructure:"csv"`
	ConfigName   string `mapstructure:"config_name"`
	Verbose      bool   `mapstructure:"verbose"`
}

// Default returns the CLI surface's documented defaults.
func Default() Config {
	return Config{
		RAMMB:     64,
		PageSize:  4096,
		SwapMB:    256,
		VSpaceMB:  4096,
		Algorithm: "CLOCK",
		TLBSize:   64,
		TLBPolicy: "LRU",
		PTType:    "SINGLE",
	}
}

// LoadYAML reads name.yaml (or name if it already has an extension) and
// merges its values over cfg's existing fields, leaving fields the file
// doesn't mention untouched.
func LoadYAML(name string, cfg *Config) error {
	path := name
	if filepath.Ext(path) == "" {
		path += ".yaml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %q: %w", name, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal %q: %w", name, err)
	}
	return nil
}

// String renders a one-line summary of the resolved config, for the log
// line emitted at startup.
func (c Config) String() string {
	return fmt.Sprintf(
		"trace=%s ram=%dMB page=%dB swap=%dMB vspace=%dMB algo=%s tlb=%d/%s pt=%s seed=%d",
		c.TracePath, c.RAMMB, c.PageSize, c.SwapMB, c.VSpaceMB,
		c.Algorithm, c.TLBSize, c.TLBPolicy, c.PTType, c.Seed,
	)
}
