package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ufolux/TransPop/internal/language"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Provider     string        `envconfig:"TRANSLATION_PROVIDER" default:"google"`
	SourceLang   string        `envconfig:"TRANSLATION_SOURCE_LANG" default:"auto"`
	TargetLang   string        `envconfig:"TRANSLATION_TARGET_LANG" default:"en"`
	Debounce     time.Duration `envconfig:"TRANSLATION_DEBOUNCE" default:"800ms"`
	HTTPTimeout  time.Duration `envconfig:"TRANSLATION_HTTP_TIMEOUT" default:"30s"`
	SettingsFile string        `envconfig:"TRANSLATION_SETTINGS_FILE" default:""`

	OpenAIAPIURL string `envconfig:"OPENAI_API_URL" default:"http://localhost:11434/v1/chat/completions"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"llama3"`

	BingPageURL    string `envconfig:"BING_PAGE_URL" default:"https://www.bing.com/translator"`
	GoogleEndpoint string `envconfig:"GOOGLE_ENDPOINT" default:"https://translate.googleapis.com/translate_a/single"`

	LangDetectEnabled  bool   `envconfig:"LANGDETECT_ENABLED" default:"true"`
	HistoryMaxItems    int    `envconfig:"HISTORY_MAX_ITEMS" default:"100"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := language.ParseProviderKind(c.Provider); !ok {
		return fmt.Errorf("TRANSLATION_PROVIDER=%q is not one of %s", c.Provider, strings.Join(providerNames(), ", "))
	}
	if strings.TrimSpace(c.SourceLang) == "" {
		return fmt.Errorf("TRANSLATION_SOURCE_LANG is required")
	}
	if strings.TrimSpace(c.TargetLang) == "" {
		return fmt.Errorf("TRANSLATION_TARGET_LANG is required")
	}
	if strings.TrimSpace(c.TargetLang) == language.AutoDetect {
		return fmt.Errorf("TRANSLATION_TARGET_LANG cannot be %q", language.AutoDetect)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("TRANSLATION_DEBOUNCE must be > 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_HTTP_TIMEOUT must be > 0")
	}
	if c.HistoryMaxItems < 1 {
		return fmt.Errorf("HISTORY_MAX_ITEMS must be >= 1")
	}
	if err := requireAbsoluteURL("BING_PAGE_URL", c.BingPageURL); err != nil {
		return err
	}
	if err := requireAbsoluteURL("GOOGLE_ENDPOINT", c.GoogleEndpoint); err != nil {
		return err
	}
	return nil
}

// ProviderKind returns the validated default provider.
func (c *Config) ProviderKind() language.ProviderKind {
	kind, _ := language.ParseProviderKind(c.Provider)
	return kind
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

func requireAbsoluteURL(name, raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}

func providerNames() []string {
	kinds := language.ProviderKinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return names
}
