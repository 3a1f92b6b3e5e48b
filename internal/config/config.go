// Package config loads copperline's optional JSON configuration file.
// Fields are pointers so a partial file only overrides what it names; the
// Get* accessors fall back to the built-in defaults, and command-line flags
// override both.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/copperforge/copperline/internal/board"
	"github.com/copperforge/copperline/internal/hostbridge"
	"github.com/copperforge/copperline/internal/neckdown"
	"github.com/copperforge/copperline/internal/stitch"
)

// Config is the root configuration. The schema is shared between the
// stitch and neckdown subcommands; each reads the fields it cares about.
type Config struct {
	// Stitch params
	ThresholdMM   *float64 `json:"threshold_mm,omitempty"`
	GroundClasses []string `json:"ground_classes,omitempty"`

	// Neckdown params
	OffsetMM *float64 `json:"offset_mm,omitempty"`

	// Host connection
	Socket *string `json:"socket,omitempty"`

	// AnnotationLayer is where stitch violation markers are drawn.
	AnnotationLayer *string `json:"annotation_layer,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file keep
// their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.ThresholdMM != nil && *c.ThresholdMM <= 0 {
		return fmt.Errorf("threshold_mm must be positive, got %f", *c.ThresholdMM)
	}
	if c.OffsetMM != nil && *c.OffsetMM < 0 {
		return fmt.Errorf("offset_mm must be non-negative, got %f", *c.OffsetMM)
	}
	for _, class := range c.GroundClasses {
		if class == "" {
			return fmt.Errorf("ground_classes must not contain empty names")
		}
	}
	if c.AnnotationLayer != nil {
		if _, err := board.ParseLayer(*c.AnnotationLayer); err != nil {
			return fmt.Errorf("invalid annotation_layer: %w", err)
		}
	}
	return nil
}

// GetThresholdMM returns the stitch gap threshold or the default.
func (c *Config) GetThresholdMM() float64 {
	if c.ThresholdMM == nil {
		return stitch.DefaultThreshold
	}
	return *c.ThresholdMM
}

// GetGroundClasses returns the net classes treated as ground or the default.
func (c *Config) GetGroundClasses() []string {
	if len(c.GroundClasses) == 0 {
		return stitch.DefaultGroundClasses
	}
	return c.GroundClasses
}

// GetOffsetMM returns the neckdown cut offset or the default.
func (c *Config) GetOffsetMM() float64 {
	if c.OffsetMM == nil {
		return neckdown.DefaultOffset
	}
	return *c.OffsetMM
}

// GetSocket returns the host automation socket path or the default.
func (c *Config) GetSocket() string {
	if c.Socket == nil || *c.Socket == "" {
		return hostbridge.DefaultSocket
	}
	return *c.Socket
}

// GetAnnotationLayer returns the annotation layer or the default. Validate
// has already checked the name parses.
func (c *Config) GetAnnotationLayer() board.Layer {
	if c.AnnotationLayer == nil {
		return board.LayerAnnotations
	}
	l, err := board.ParseLayer(*c.AnnotationLayer)
	if err != nil {
		return board.LayerAnnotations
	}
	return l
}
