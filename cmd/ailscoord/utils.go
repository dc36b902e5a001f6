package main

import (
	"fmt"
	"os"

	"github.com/ailscvrp/core/pkg/config"
)

// loadConfig loads the configuration from file, auto-generating a
// default one if it doesn't exist yet.
func loadConfig() (config.Options, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = "ailscoord.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", configPath)

		opt := config.Default()
		if err := config.Save(opt, configPath); err != nil {
			return opt, fmt.Errorf("create default config: %w", err)
		}
		return opt, nil
	}

	opt, err := config.Load(configPath)
	if err != nil {
		return opt, fmt.Errorf("load config from %s: %w", configPath, err)
	}

	v := config.NewValidator()
	if err := v.Validate(opt); err != nil {
		return opt, fmt.Errorf("invalid configuration: %w", err)
	}
	return opt, nil
}
