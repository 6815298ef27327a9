package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL          = "https://api.notion.com/v1"
	DefaultAPIVersion       = "2022-06-28"
	DefaultRetryAttempts    = 3
	DefaultRequestTimeoutMS = 30000
	DefaultWebhookPath      = "/webhooks/notion"
	DefaultTokenKey         = "notion.webhook.verification_token"
	DefaultMaxBodyBytes     = 1 << 20
)

type APIConfig struct {
	Key              string `koanf:"key" mapstructure:"key"`
	BaseURL          string `koanf:"base_url" mapstructure:"base_url"`
	Version          string `koanf:"version" mapstructure:"version"`
	RetryAttempts    int    `koanf:"retry_attempts" mapstructure:"retry_attempts"`
	RequestTimeoutMS int    `koanf:"request_timeout_ms" mapstructure:"request_timeout_ms"`
}

type WorkspaceConfig struct {
	DefaultName string `koanf:"default_name" mapstructure:"default_name"`
}

type WebhookConfig struct {
	Path         string `koanf:"path" mapstructure:"path"`
	TokenKey     string `koanf:"token_key" mapstructure:"token_key"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	API         APIConfig       `koanf:"api" mapstructure:"api"`
	Workspace   WorkspaceConfig `koanf:"workspace" mapstructure:"workspace"`
	Webhooks    WebhookConfig   `koanf:"webhooks" mapstructure:"webhooks"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "notion",
		API: APIConfig{
			BaseURL:          DefaultBaseURL,
			Version:          DefaultAPIVersion,
			RetryAttempts:    DefaultRetryAttempts,
			RequestTimeoutMS: DefaultRequestTimeoutMS,
		},
		Webhooks: WebhookConfig{
			Path:         DefaultWebhookPath,
			TokenKey:     DefaultTokenKey,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if raw := strings.TrimSpace(c.API.BaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("core: api.base_url %q is invalid", raw)
		}
	}
	if c.API.RetryAttempts < 0 {
		return fmt.Errorf("core: api.retry_attempts must not be negative")
	}
	if c.API.RequestTimeoutMS < 0 {
		return fmt.Errorf("core: api.request_timeout_ms must not be negative")
	}
	if path := strings.TrimSpace(c.Webhooks.Path); path != "" && !strings.HasPrefix(path, "/") {
		return fmt.Errorf("core: webhooks.path must start with /")
	}
	if c.Webhooks.MaxBodyBytes < 0 {
		return fmt.Errorf("core: webhooks.max_body_bytes must not be negative")
	}
	return nil
}

// RequestTimeout returns the configured per-call timeout, falling back to the default.
func (c Config) RequestTimeout() time.Duration {
	if c.API.RequestTimeoutMS <= 0 {
		return DefaultRequestTimeoutMS * time.Millisecond
	}
	return time.Duration(c.API.RequestTimeoutMS) * time.Millisecond
}

func (c Config) RetryAttempts() int {
	if c.API.RetryAttempts <= 0 {
		return DefaultRetryAttempts
	}
	return c.API.RetryAttempts
}

func (c Config) TokenKey() string {
	if key := strings.TrimSpace(c.Webhooks.TokenKey); key != "" {
		return key
	}
	return DefaultTokenKey
}
