package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/cli"
	"github.com/ufolux/TransPop/internal/config"
	"github.com/ufolux/TransPop/internal/history"
	"github.com/ufolux/TransPop/internal/langdetect"
	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/logging"
	"github.com/ufolux/TransPop/internal/orchestrator"
	"github.com/ufolux/TransPop/internal/session"
	"github.com/ufolux/TransPop/internal/settings"
	"github.com/ufolux/TransPop/internal/translation"
)

// runtime is the wired object graph shared by every command.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	settings settings.Source
	sessions *session.Manager
	registry *translation.Registry
	gateway  *translation.Gateway
	history  *history.Store
}

func bootstrap(envLoader *cli.EnvLoader, stderr io.Writer) (*runtime, error) {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).Level(zerolog.WarnLevel)
	if envLoader != nil {
		if _, err := envLoader.Load(bootLogger); err != nil {
			bootLogger.Warn().Err(err).Msg("env file not loaded")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	return newRuntime(cfg, logger)
}

func newRuntime(cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	base := settings.Settings{
		Provider:   cfg.ProviderKind(),
		SourceLang: cfg.SourceLang,
		TargetLang: cfg.TargetLang,
		ChatCompletion: settings.ChatCompletion{
			EndpointURL: cfg.OpenAIAPIURL,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
		},
	}
	var source settings.Source = settings.NewStatic(base)
	if path := strings.TrimSpace(cfg.SettingsFile); path != "" {
		source = settings.NewFileStore(path, base, logger)
	}

	var detector translation.LanguageDetector
	if cfg.LangDetectEnabled {
		detector = langdetect.Detector{}
	}

	sessions := session.NewManager(session.Options{
		PageURL: cfg.BingPageURL,
		Timeout: cfg.HTTPTimeout,
	}, logger)

	registry := translation.NewRegistry(cfg.ProviderKind())
	providers := []translation.Provider{
		translation.NewBingProvider(sessions, cfg.HTTPTimeout, logger),
		translation.NewGoogleProvider(cfg.GoogleEndpoint, cfg.HTTPTimeout, logger),
		translation.NewChatProvider(source, detector, cfg.HTTPTimeout, logger),
	}
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("register %s provider: %w", provider.Kind(), err)
		}
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		settings: source,
		sessions: sessions,
		registry: registry,
		gateway:  translation.NewGateway(registry, logger),
		history:  history.NewStore(cfg.HistoryMaxItems, logger),
	}, nil
}

// selection resolves the provider and languages for one command, letting
// explicit flags win over the settings store.
func (r *runtime) selection(provider, from, to string) (orchestrator.Input, error) {
	current, err := r.settings.Current()
	if err != nil {
		return orchestrator.Input{}, fmt.Errorf("load settings: %w", err)
	}

	in := orchestrator.Input{
		SourceLang: current.SourceLang,
		TargetLang: current.TargetLang,
		Provider:   current.Provider,
	}
	if raw := strings.TrimSpace(provider); raw != "" {
		kind, ok := language.ParseProviderKind(raw)
		if !ok {
			return orchestrator.Input{}, usageErrorf("unknown provider %q (want one of %s)", raw, strings.Join(r.registry.ProviderNames(), ", "))
		}
		in.Provider = kind
	}
	if strings.TrimSpace(from) != "" {
		code := language.Canonical(from)
		if code == "" {
			return orchestrator.Input{}, usageErrorf("--from %q is not a language code", from)
		}
		in.SourceLang = code
	}
	if strings.TrimSpace(to) != "" {
		code := language.Canonical(to)
		if code == "" || code == language.AutoDetect {
			return orchestrator.Input{}, usageErrorf("--to %q is not a target language code", to)
		}
		in.TargetLang = code
	}
	return in, nil
}

func (r *runtime) newOrchestrator(initial orchestrator.Input, debounce time.Duration) *orchestrator.Orchestrator {
	if debounce <= 0 {
		debounce = r.cfg.Debounce
	}
	return orchestrator.New(r.gateway, r.logger, orchestrator.Options{
		Debounce: debounce,
		Initial:  initial,
		History:  r.history,
	})
}
