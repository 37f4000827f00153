package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Supported chat model providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// ErrMissingAPIKey is returned when the selected provider has no credential configured.
var ErrMissingAPIKey = errors.New("missing model API key")

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Render  RenderConfig
	Session SessionConfig
}

// Load reads the configuration from the environment. A missing credential for the
// selected provider is reported as ErrMissingAPIKey.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	cfg.Server = server

	if err := cfg.AI.Validate(); err != nil {
		return nil, err
	}
	if cfg.Render.WrapWidth < 1 {
		return nil, fmt.Errorf("invalid KELLY_WRAP_WIDTH value %d", cfg.Render.WrapWidth)
	}
	if cfg.Session.IdleTTL > 0 && cfg.Session.SweepInterval <= 0 {
		return nil, fmt.Errorf("invalid KELLY_SESSION_SWEEP_INTERVAL value %s", cfg.Session.SweepInterval)
	}

	return cfg, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `env:"-"`
}

// loadServerConfig resolves the listen address from PORT.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model provider.
type AIConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	// GeminiAPIKeyFile holds the content of the file named by GEMINI_API_KEY_FILE,
	// for deployments that mount secrets as files.
	GeminiAPIKeyFile string `env:"GEMINI_API_KEY_FILE,file"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	APIKey    string `env:"ARK_API_KEY"`
	AccessKey string `env:"ARK_ACCESS_KEY"`
	SecretKey string `env:"ARK_SECRET_KEY"`
	Model     string `env:"Model"`
	BaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region    string `env:"ARK_REGION" envDefault:"cn-beijing"`

	// Sampling overrides shared by both providers; unset leaves the provider default.
	Temperature *float32 `env:"LLM_TEMPERATURE"`
	TopP        *float32 `env:"LLM_TOP_P"`
	MaxTokens   *int     `env:"LLM_MAX_TOKENS"`

	RequestTimeout time.Duration `env:"KELLY_REQUEST_TIMEOUT" envDefault:"60s"`
}

// RenderConfig describes answer formatting.
type RenderConfig struct {
	WrapWidth int `env:"KELLY_WRAP_WIDTH" envDefault:"85"`
}

// SessionConfig bounds how long idle sessions stay in memory.
type SessionConfig struct {
	// IdleTTL of zero keeps sessions until the process exits.
	IdleTTL       time.Duration `env:"KELLY_SESSION_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"KELLY_SESSION_SWEEP_INTERVAL" envDefault:"10m"`
}

// GeminiKey returns the Gemini credential, preferring the plain variable over the file.
func (c AIConfig) GeminiKey() string {
	if key := strings.TrimSpace(c.GeminiAPIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GeminiAPIKeyFile)
}

// Enabled reports whether the selected provider has the credentials it needs.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiKey() != ""
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return false
	}
}

// Validate checks the provider name and its credentials.
func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if !c.Enabled() {
			return fmt.Errorf("%w: set GEMINI_API_KEY or GEMINI_API_KEY_FILE", ErrMissingAPIKey)
		}
	case ProviderArk:
		if !c.Enabled() {
			return fmt.Errorf("%w: set Model plus ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid KELLY_REQUEST_TIMEOUT value %s", c.RequestTimeout)
	}
	return nil
}
