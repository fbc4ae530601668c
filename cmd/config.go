// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/feestat/pkg/fee"
	"gopkg.in/yaml.v3"
)

// LimitsConfig is the YAML form of a bounds override:
//
//	limits:
//	  WOISIZE: {min: 0, max: 100}
//	  FREQBINNINGBAND_1.BANDSIZE: {min: 0, max: 200}
type LimitsConfig struct {
	Limits map[string]fee.Range `yaml:"limits"`
}

// LoadLimits loads bound overrides from a YAML file and merges them onto
// the default table. Unknown field names are rejected.
func LoadLimits(filename string) (fee.Limits, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read limits file: %w", err)
	}

	var config LimitsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse limits file: %w", err)
	}

	defaults := fee.DefaultLimits()
	for name, r := range config.Limits {
		if _, ok := defaults[name]; !ok {
			return nil, fmt.Errorf("limits file: unknown field %q", name)
		}
		if r.Min > r.Max {
			return nil, fmt.Errorf("limits file: %s has min %d above max %d", name, r.Min, r.Max)
		}
	}

	return defaults.Merge(config.Limits), nil
}

// activeLimits returns the limits selected by --limits, or the defaults
func activeLimits() (fee.Limits, error) {
	if limitsPath == "" {
		return fee.DefaultLimits(), nil
	}
	return LoadLimits(limitsPath)
}
