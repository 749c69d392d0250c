// Package config loads gclib.Config from a YAML file, so a benchmark or
// test driver can externalize tuning constants instead of recompiling.
// This is ambient configuration plumbing for harnesses around the library,
// not a format the GC itself reads or writes.
package config

import (
	"fmt"
	"os"

	"github.com/mkern/gclib"
	"gopkg.in/yaml.v2"
)

// Load reads and decodes a YAML file into a gclib.Config, starting from
// gclib.DefaultConfig() so the file only needs to override what differs.
func Load(path string) (gclib.Config, error) {
	cfg := gclib.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return gclib.Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return gclib.Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
