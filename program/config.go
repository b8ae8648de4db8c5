package program

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk, YAML-encoded layer of VM configuration that sits
// above the compiled-in defaults and below CLI flag overrides: feature
// flags, the plugin search path, and trace filters. Grounded in the
// teacher's own YAML-driven configuration style (gopkg.in/yaml.v3).
type Config struct {
	ArityCheck       *bool    `yaml:"arity_check,omitempty"`
	RemoveUnusedVars *bool    `yaml:"remove_unused_vars,omitempty"`
	PluginPath       []string `yaml:"plugin_path,omitempty"`
	TraceFilters     []string `yaml:"trace_filters,omitempty"`
}

// LoadConfig reads a YAML config file. A missing file is not an error —
// it simply means "use compiled-in defaults" — but a malformed one is.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyTo layers cfg onto the given flags, returning the merged result.
// Only fields explicitly set in the YAML document override the input.
func (cfg Config) ApplyTo(flags Flags) Flags {
	if cfg.ArityCheck != nil {
		flags.ArityCheck = *cfg.ArityCheck
	}
	if cfg.RemoveUnusedVars != nil {
		flags.RemoveUnusedVars = *cfg.RemoveUnusedVars
	}
	return flags
}
