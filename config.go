// Copyright (C) 2024, sectorkit contributors
//
// sectorkit is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// sectorkit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sectorkit.  If not, see <https://www.gnu.org/licenses/>.

package sectorkit

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config gathers the tunables the spec calls out as magic constants that
// should be configurable rather than hardcoded: grid cell size, the
// orientation/containment epsilon, the CCW loop-trace guard limit, and log
// verbosity. Mirrors VigilantBSP's config.go in spirit - one struct threaded
// through the core - but is loadable from YAML instead of CLI flags, because
// this core is a library, not a one-shot batch tool.
type Config struct {
	// GridCellSize is the uniform spatial grid's cell size, in map units
	// (default 128). Any positive size gives the same query results; it
	// only changes how entities are bucketed.
	GridCellSize int `yaml:"grid_cell_size"`

	// Epsilon is the zero-threshold used by orientation, on-segment and
	// collinear-overlap tests.
	Epsilon float64 `yaml:"epsilon"`

	// MaxTraceSteps bounds a single CCW loop trace during face recovery
	// before it is aborted as degenerate (spec: "guard limit ... expose as
	// configuration").
	MaxTraceSteps int `yaml:"max_trace_steps"`

	// Verbosity gates internal log.Verbosef calls; 0 is quiet.
	Verbosity int `yaml:"verbosity"`
}

// DefaultConfig returns the configuration the spec's numeric constants
// imply: 128-unit grid cells, a 1e-12 geometric epsilon, and a 100000-step
// trace guard.
func DefaultConfig() *Config {
	return &Config{
		GridCellSize:  128,
		Epsilon:       1e-12,
		MaxTraceSteps: 100000,
		Verbosity:     0,
	}
}

// LoadConfig reads a YAML configuration file and fills in any field left at
// its zero value from DefaultConfig, so a config file only needs to mention
// the settings it wants to override.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	def := DefaultConfig()
	if cfg.GridCellSize == 0 {
		cfg.GridCellSize = def.GridCellSize
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.MaxTraceSteps == 0 {
		cfg.MaxTraceSteps = def.MaxTraceSteps
	}
	return cfg, nil
}
