// Package equityconfig loads the engine's own operational settings —
// worker pool size, telemetry paths, simulation defaults — from an HCL
// file.
package equityconfig

import (
	"fmt"
	"os"
	"runtime"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// EngineConfig is the top-level HCL document: one "engine" block.
type EngineConfig struct {
	Engine EngineSettings `hcl:"engine,block"`
}

// EngineSettings holds engine defaults for use when a request doesn't
// specify them explicitly. The poker-equity CLI does not load this
// config; its flags carry their own defaults.
type EngineSettings struct {
	Workers          int    `hcl:"workers,optional"`
	DefaultTrials    int    `hcl:"default_trials,optional"`
	UpdateInterval   int    `hcl:"update_interval,optional"`
	SharedMemoryRoot string `hcl:"shared_memory_root,optional"`
	LogLevel         string `hcl:"log_level,optional"`
}

// DefaultEngineConfig returns the settings used when no config file is
// present, or a file is present but omits a field.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Engine: EngineSettings{
			Workers:          runtime.NumCPU(),
			DefaultTrials:    100_000,
			UpdateInterval:   1000,
			SharedMemoryRoot: "/dev/shm",
			LogLevel:         "info",
		},
	}
}

// Load reads and decodes an HCL engine config file. A missing file is not
// an error: DefaultEngineConfig is returned instead, matching the
// teacher's "no config file means run with sane defaults" behavior.
func Load(filename string) (*EngineConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultEngineConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL file %s: %s", filename, diags.Error())
	}

	var config EngineConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL file %s: %s", filename, diags.Error())
	}

	defaults := DefaultEngineConfig().Engine
	if config.Engine.Workers <= 0 {
		config.Engine.Workers = defaults.Workers
	}
	if config.Engine.DefaultTrials <= 0 {
		config.Engine.DefaultTrials = defaults.DefaultTrials
	}
	if config.Engine.UpdateInterval <= 0 {
		config.Engine.UpdateInterval = defaults.UpdateInterval
	}
	if config.Engine.SharedMemoryRoot == "" {
		config.Engine.SharedMemoryRoot = defaults.SharedMemoryRoot
	}
	if config.Engine.LogLevel == "" {
		config.Engine.LogLevel = defaults.LogLevel
	}

	return &config, nil
}

// Validate checks the settings that matter at simulation time: a
// nonsensical worker count or trial budget should fail fast at startup
// rather than surface as a confusing mid-run error.
func (c *EngineConfig) Validate() error {
	if c.Engine.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Engine.Workers)
	}
	if c.Engine.DefaultTrials < 1 {
		return fmt.Errorf("default_trials must be >= 1, got %d", c.Engine.DefaultTrials)
	}
	if c.Engine.UpdateInterval < 1 {
		return fmt.Errorf("update_interval must be >= 1, got %d", c.Engine.UpdateInterval)
	}
	if c.Engine.SharedMemoryRoot == "" {
		return fmt.Errorf("shared_memory_root must not be empty")
	}
	return nil
}
