package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"rivalwatch/internal/features"
	"rivalwatch/internal/insight"
)

// Rules holds the tunable rule constants and feature patterns. Anything
// left out of the file keeps its default.
type Rules struct {
	Thresholds insight.Thresholds    `yaml:"thresholds"`
	Features   []features.PatternSet `yaml:"features"`
	Platforms  []features.Platform   `yaml:"delivery_platforms"`
}

// DefaultRules returns the stock rules.
func DefaultRules() *Rules {
	return &Rules{
		Thresholds: insight.DefaultThresholds(),
		Features:   features.DefaultPatternSets,
		Platforms:  features.DefaultPlatforms,
	}
}

// LoadRules reads a YAML rules file. An empty path yields the defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes YAML rules and fills unset values with defaults.
// Unknown keys are rejected and every pattern must compile.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r.Thresholds = r.Thresholds.Merge()
	if len(r.Features) == 0 {
		r.Features = features.DefaultPatternSets
	}
	if len(r.Platforms) == 0 {
		r.Platforms = features.DefaultPlatforms
	}
	if _, err := r.Detector(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Detector compiles the feature patterns.
func (r *Rules) Detector() (*features.Detector, error) {
	d, err := features.NewDetector(r.Features, r.Platforms)
	if err != nil {
		return nil, fmt.Errorf("compile feature patterns: %w", err)
	}
	return d, nil
}
