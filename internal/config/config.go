// Package config loads and validates client configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Poll    PollConfig    `mapstructure:"poll"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Mock    MockConfig    `mapstructure:"mock"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServiceConfig locates the remote crawl service.
type ServiceConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIToken string `mapstructure:"api_token"`
}

// CrawlConfig supplies defaults for job submission.
type CrawlConfig struct {
	URLs     []string `mapstructure:"urls"`
	Priority int      `mapstructure:"priority"`
}

// PollConfig governs the task polling loop.
type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	MaxWaitSeconds  int `mapstructure:"max_wait_seconds"`
}

// HTTPConfig configures per-request behavior. A zero timeout disables
// request deadlines, matching the service's reference client.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// MockConfig controls the bundled mock crawl service.
type MockConfig struct {
	Port              int `mapstructure:"port"`
	TaskDelaySeconds  int `mapstructure:"task_delay_seconds"`
	AsyncThreshold    int `mapstructure:"async_threshold"`
	ResultsPerRequest int `mapstructure:"results_per_request"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWL4AI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.base_url", "http://localhost:11235")
	v.SetDefault("crawl.urls", []string{"https://www.baidu.com", "https://www.qq.com"})
	v.SetDefault("crawl.priority", 10)
	v.SetDefault("poll.interval_seconds", 2)
	v.SetDefault("poll.max_wait_seconds", 0)
	v.SetDefault("http.timeout_seconds", 0)
	v.SetDefault("mock.port", 11235)
	v.SetDefault("mock.task_delay_seconds", 4)
	v.SetDefault("mock.async_threshold", 2)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.base_url must be an absolute URL")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0")
	}
	if c.Poll.MaxWaitSeconds < 0 {
		return fmt.Errorf("poll.max_wait_seconds must be >= 0")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must be >= 0")
	}
	if c.Mock.Port <= 0 {
		return fmt.Errorf("mock.port must be > 0")
	}
	if c.Mock.AsyncThreshold < 0 {
		return fmt.Errorf("mock.async_threshold must be >= 0")
	}
	return nil
}

// PollInterval converts the poll interval config into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// MaxWait converts the overall poll budget into a duration; zero means
// unbounded.
func (c Config) MaxWait() time.Duration {
	return time.Duration(c.Poll.MaxWaitSeconds) * time.Second
}

// RequestTimeout converts the per-request timeout into a duration; zero
// disables it.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// TaskDelay is how long the mock service keeps a task in "running".
func (c Config) TaskDelay() time.Duration {
	return time.Duration(c.Mock.TaskDelaySeconds) * time.Second
}
