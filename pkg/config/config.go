// Package config loads and validates the coordinator's Options record
// from a YAML file, grounded on the teacher's config.go load/default/
// save shape (gopkg.in/yaml.v3, DefaultConfig-then-overlay).
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads Options from a YAML file at path, starting from Default()
// and overlaying whatever the file sets. A missing file is not an
// error: it returns the defaults, same as the teacher's Load.
func Load(path string) (Options, error) {
	opt := Default()
	if path == "" {
		return opt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opt, nil
		}
		return opt, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opt); err != nil {
		return opt, fmt.Errorf("parse config file: %w", err)
	}
	return opt, nil
}

// Save writes opt to path as YAML.
func Save(opt Options, path string) error {
	data, err := yaml.Marshal(opt)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
