package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		QuestionSeconds int    `yaml:"question_seconds"`
		QuizTTL         string `yaml:"quiz_ttl"`
	} `yaml:"session"`
	Ledger struct {
		Path  string `yaml:"path"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"ledger"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "https://server.datasenseai.com"
	cfg.Session.QuestionSeconds = 80
	cfg.Ledger.Path = "attempts.json"
	return cfg
}

// Load reads YAML config from path, filling unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
