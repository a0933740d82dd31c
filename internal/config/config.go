package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/julienpequegnot/openqa/internal/taskstatus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Status StatusConfig `yaml:"status"`
	Cache  CacheConfig  `yaml:"cache"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Score  ScoreConfig  `yaml:"score"`
	Daemon DaemonConfig `yaml:"daemon"`
}

type SiteConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key,omitempty"`
	SiteUserAPIKey string `yaml:"site_user_api_key,omitempty"`
}

// StatusConfig selects where download task status comes from: "local" reads the
// openqa database, "remote" asks the portal's action API.
type StatusConfig struct {
	Source         string `yaml:"source"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type CacheConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type FetchConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	MaxBytes       int64  `yaml:"max_bytes"`
}

type ScoreConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type DaemonConfig struct {
	IntervalHours int `yaml:"interval_hours"`
}

func Default() *Config {
	return &Config{
		Site: SiteConfig{
			URL: "http://localhost:5000",
		},
		Status: StatusConfig{
			Source:         "local",
			TimeoutSeconds: 10,
		},
		Fetch: FetchConfig{
			Concurrency:    5,
			TimeoutSeconds: 30,
			UserAgent:      "openqa/1.0",
			MaxBytes:       50 * 1024 * 1024,
		},
		Score: ScoreConfig{
			Concurrency: 4,
		},
		Daemon: DaemonConfig{
			IntervalHours: 24,
		},
	}
}

// TaskContext is the portal endpoint and credentials used for task status queries.
func (c *Config) TaskContext() taskstatus.TaskContext {
	return taskstatus.TaskContext{
		SiteURL:        c.Site.URL,
		APIKey:         c.Site.APIKey,
		SiteUserAPIKey: c.Site.SiteUserAPIKey,
	}
}

func (c *Config) StatusTimeout() time.Duration {
	return time.Duration(c.Status.TimeoutSeconds) * time.Second
}

func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(Dir(), "cache")
}

func Dir() string {
	if dir := os.Getenv("OPENQA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".openqa")
}

func DBPath() string {
	return filepath.Join(Dir(), "openqa.db")
}

func configPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Load() (*Config, error) {
	data, err := os.ReadFile(configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0644)
}
