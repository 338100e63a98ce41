package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML, with environment
// variables covering secrets and connection details.
type Config struct {
	Draft struct {
		ValueChart string `yaml:"value_chart"`
	} `yaml:"draft"`

	Orchestrator struct {
		Enabled   bool   `yaml:"enabled"`
		BatchSize int    `yaml:"batch_size"`
		AutoPick  string `yaml:"auto_pick"` // "evaluator" or "random"
	} `yaml:"orchestrator"`

	Events struct {
		Enabled         bool   `yaml:"enabled"`
		StreamName      string `yaml:"stream_name"`
		Subject         string `yaml:"subject"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
		BatchSize       int    `yaml:"batch_size"`
	} `yaml:"events"`
}

func defaultConfig() *Config {
	var c Config
	c.Draft.ValueChart = "JIMMY_JOHNSON"
	c.Orchestrator.Enabled = true
	c.Orchestrator.BatchSize = 10
	c.Orchestrator.AutoPick = "evaluator"
	c.Events.Enabled = true
	c.Events.StreamName = "DRAFT_EVENTS"
	c.Events.Subject = "draft.events"
	c.Events.PollIntervalSec = 5
	c.Events.BatchSize = 100
	return &c
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
