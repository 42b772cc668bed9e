package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFilename = ".agentline.yaml"

// File is the on-disk presentation configuration.
type File struct {
	// CharDelayMs is the per-character typewriter delay.
	CharDelayMs int `yaml:"char_delay_ms,omitempty"`
	// MinVisibleMs is the floor transient states stay visible.
	MinVisibleMs int `yaml:"min_visible_ms,omitempty"`
	// Animate toggles pacing; off collapses all floors to zero (replay mode).
	Animate *bool `yaml:"animate,omitempty"`
	// LabelScript is an optional JS module mapping custom tool names to
	// display labels.
	LabelScript string `yaml:"label_script,omitempty"`
}

func DefaultPath(root string) string {
	return filepath.Join(root, DefaultConfigFilename)
}

func LoadFromFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	var cfg File
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config yaml")
	}
	return &cfg, nil
}

func LoadOptional(path string) (*File, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "stat config")
	}
	return LoadFromFile(path)
}

// CharDelay returns the typewriter delay with the default applied.
func (f *File) CharDelay() time.Duration {
	if f.CharDelayMs <= 0 {
		return 30 * time.Millisecond
	}
	return time.Duration(f.CharDelayMs) * time.Millisecond
}

// MinVisible returns the transient-state floor with the default applied,
// collapsed to zero when animation is off.
func (f *File) MinVisible() time.Duration {
	if !f.Animated() {
		return 0
	}
	if f.MinVisibleMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(f.MinVisibleMs) * time.Millisecond
}

// Animated defaults to true.
func (f *File) Animated() bool {
	return f.Animate == nil || *f.Animate
}
