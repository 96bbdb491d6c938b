// Package settings is the configuration store consulted on every translation:
// which provider is selected and how the chat-completion backend is reached.
package settings

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/logging"
)

const (
	DefaultChatEndpoint = "http://localhost:11434/v1/chat/completions"
	DefaultChatModel    = "llama3"
)

// ChatCompletion describes an OpenAI-compatible chat completions backend.
type ChatCompletion struct {
	EndpointURL string
	APIKey      string
	Model       string
}

// Settings is one consistent view of the user-selectable configuration.
type Settings struct {
	Provider       language.ProviderKind
	SourceLang     string
	TargetLang     string
	ChatCompletion ChatCompletion
}

// Source supplies the current settings. Implementations must be cheap enough
// to call once per request.
type Source interface {
	Current() (Settings, error)
}

// Static serves a fixed Settings value.
type Static struct {
	settings Settings
}

func NewStatic(s Settings) *Static {
	return &Static{settings: s}
}

func (s *Static) Current() (Settings, error) {
	return s.settings, nil
}

type fileSettings struct {
	Provider   string `yaml:"provider"`
	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`
	OpenAI     struct {
		APIURL string `yaml:"api_url"`
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`
}

// FileStore reads a YAML settings file on every call so edits take effect
// without a restart. Fields missing from the file keep their fallback value.
type FileStore struct {
	path     string
	fallback Settings
	logger   zerolog.Logger

	mu          sync.Mutex
	lastWarning string
}

func NewFileStore(path string, fallback Settings, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:     strings.TrimSpace(path),
		fallback: fallback,
		logger:   logging.Component(logger, "settings"),
	}
}

func (s *FileStore) Current() (Settings, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.warnOnce("settings file not found, using defaults")
			return s.fallback, nil
		}
		return Settings{}, fmt.Errorf("read settings file %s: %w", s.path, err)
	}

	var parsed fileSettings
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return Settings{}, fmt.Errorf("decode settings file %s: %w", s.path, err)
	}

	out := s.fallback
	if name := strings.TrimSpace(parsed.Provider); name != "" {
		kind, ok := language.ParseProviderKind(name)
		if !ok {
			return Settings{}, fmt.Errorf("settings file %s: unknown provider %q", s.path, name)
		}
		out.Provider = kind
	}
	if v := strings.TrimSpace(parsed.SourceLang); v != "" {
		out.SourceLang = v
	}
	if v := strings.TrimSpace(parsed.TargetLang); v != "" {
		out.TargetLang = v
	}
	if v := strings.TrimSpace(parsed.OpenAI.APIURL); v != "" {
		out.ChatCompletion.EndpointURL = v
	}
	if v := strings.TrimSpace(parsed.OpenAI.APIKey); v != "" {
		out.ChatCompletion.APIKey = v
	}
	if v := strings.TrimSpace(parsed.OpenAI.Model); v != "" {
		out.ChatCompletion.Model = v
	}
	return out, nil
}

func (s *FileStore) warnOnce(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastWarning == msg {
		return
	}
	s.lastWarning = msg
	s.logger.Warn().Str("path", s.path).Msg(msg)
}
