package translation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/globaltime"
	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/logging"
)

// Gateway dispatches a request to the provider it names and normalizes the
// outcome. It never retries; the first provider error is returned as is.
type Gateway struct {
	registry *Registry
	logger   zerolog.Logger
}

func NewGateway(registry *Registry, logger zerolog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		logger:   logging.Component(logger, "gateway"),
	}
}

func (g *Gateway) DefaultProvider() ProviderKind {
	if g == nil {
		return ""
	}
	return g.registry.DefaultProvider()
}

func (g *Gateway) Translate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	provider, err := g.registry.Provider(req.Provider)
	if err != nil {
		return nil, err
	}
	kind := provider.Kind()

	outbound := Request{
		Text:       req.Text,
		SourceLang: language.ToProviderCode(req.SourceLang, kind),
		TargetLang: language.ToProviderCode(req.TargetLang, kind),
		Provider:   kind,
	}

	started := globaltime.Now()
	res, err := provider.Translate(ctx, outbound)
	latency := globaltime.Since(started)
	if err != nil {
		g.logger.Debug().
			Err(err).
			Str("provider", kind.String()).
			Dur("latency", latency).
			Msg("translation failed")
		return nil, err
	}

	detected := language.FromProviderCode(strings.TrimSpace(res.DetectedSourceLang), kind)
	if detected == "" {
		detected = req.SourceLang
	}

	g.logger.Debug().
		Str("provider", kind.String()).
		Str("source_lang", req.SourceLang).
		Str("detected_lang", detected).
		Str("target_lang", req.TargetLang).
		Dur("latency", latency).
		Msg("translation completed")

	return &Result{
		Text:               res.Text,
		DetectedSourceLang: detected,
	}, nil
}
