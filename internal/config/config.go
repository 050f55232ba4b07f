// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig          `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig         `mapstructure:"browser" yaml:"browser"`
	Interaction InteractionConfig     `mapstructure:"interaction" yaml:"interaction"`
	Notify      NotifyConfig          `mapstructure:"notify" yaml:"notify"`
	Sites       map[string]SiteConfig `mapstructure:"sites" yaml:"sites"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser process.
type BrowserConfig struct {
	Headless        bool           `mapstructure:"headless" yaml:"headless"`
	DisableCache    bool           `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent       string         `mapstructure:"user_agent" yaml:"user_agent"`
	Args            []string       `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int `mapstructure:"viewport" yaml:"viewport"`
}

// InteractionConfig tunes the resilient interaction layer: how long waits
// block, how often actions retry, and where failure snapshots land.
type InteractionConfig struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	DefaultWait    time.Duration `mapstructure:"default_wait" yaml:"default_wait"`
	RetryCount     int           `mapstructure:"retry_count" yaml:"retry_count"`
	BackoffMin     time.Duration `mapstructure:"backoff_min" yaml:"backoff_min"`
	BackoffMax     time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
	ScreenshotDir  string        `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// NotifyConfig configures the optional run-outcome notification sink.
type NotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`
	From     string `mapstructure:"from" yaml:"from"`
	Password string `mapstructure:"password" yaml:"-"`
	To       string `mapstructure:"to" yaml:"to"`
}

// SiteConfig describes one storefront: its entry URLs, the selector map the
// page objects resolve against, and per-phase timeout overrides.
type SiteConfig struct {
	BaseURL     string                   `mapstructure:"base_url" yaml:"base_url"`
	LoginURL    string                   `mapstructure:"login_url" yaml:"login_url"`
	CartURL     string                   `mapstructure:"cart_url" yaml:"cart_url"`
	CheckoutURL string                   `mapstructure:"checkout_url" yaml:"checkout_url"`
	Selectors   map[string]string        `mapstructure:"selectors" yaml:"selectors"`
	Timeouts    map[string]time.Duration `mapstructure:"timeouts" yaml:"timeouts"`
	Steps       map[string][]string      `mapstructure:"steps" yaml:"steps"`
	Delivery    map[string]string        `mapstructure:"delivery" yaml:"delivery"`
}

// SetDefaults initializes default values for configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "cartpilot")
	v.SetDefault("logger.log_file", "cartpilot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	v.SetDefault("browser.viewport", map[string]int{"width": 1280, "height": 800})

	// -- Interaction --
	v.SetDefault("interaction.default_timeout", "30s")
	v.SetDefault("interaction.default_wait", "5s")
	v.SetDefault("interaction.retry_count", 3)
	v.SetDefault("interaction.backoff_min", "500ms")
	v.SetDefault("interaction.backoff_max", "2s")
	v.SetDefault("interaction.screenshot_dir", "screenshots")
	v.SetDefault("interaction.poll_interval", "1s")

	// -- Notify --
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.smtp_port", 587)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	v.BindEnv("notify.password", "CARTPILOT_SMTP_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Interaction.Validate(); err != nil {
		return fmt.Errorf("interaction configuration invalid: %w", err)
	}
	for name, site := range c.Sites {
		if err := site.Validate(); err != nil {
			return fmt.Errorf("site %q configuration invalid: %w", name, err)
		}
	}
	if c.Notify.Enabled {
		if c.Notify.SMTPHost == "" || c.Notify.From == "" || c.Notify.To == "" {
			return fmt.Errorf("notify.smtp_host, notify.from and notify.to are required when notifications are enabled")
		}
	}
	return nil
}

// Validate checks the interaction layer settings.
func (ic *InteractionConfig) Validate() error {
	if ic.RetryCount < 1 {
		return fmt.Errorf("retry_count must be at least 1")
	}
	if ic.DefaultTimeout < 0 || ic.DefaultWait < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	if ic.BackoffMin < 0 || ic.BackoffMin > ic.BackoffMax {
		return fmt.Errorf("backoff_min must be non-negative and no greater than backoff_max")
	}
	if ic.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	return nil
}

// Validate checks that a site profile is usable by the workflow layer.
func (s *SiteConfig) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an absolute http(s) URL")
	}
	return nil
}

// Timeout returns the named per-phase timeout, or fallback when unset.
func (s *SiteConfig) Timeout(name string, fallback time.Duration) time.Duration {
	if d, ok := s.Timeouts[name]; ok && d > 0 {
		return d
	}
	return fallback
}
