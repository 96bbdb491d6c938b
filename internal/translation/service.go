package translation

import (
	"context"

	"github.com/ufolux/TransPop/internal/language"
)

// ProviderKind selects a backend. It is shared with the language package so the
// code normalizer can key its mappings on the same values.
type ProviderKind = language.ProviderKind

const (
	ProviderScrapedWeb     = language.ScrapedWeb
	ProviderFreeEndpoint   = language.FreeEndpoint
	ProviderChatCompletion = language.ChatCompletion
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	Kind() ProviderKind
}

// Request describes one translation attempt.
type Request struct {
	Text       string
	SourceLang string // canonical code or "auto"
	TargetLang string
	Provider   ProviderKind
}

// Result is the provider-independent translation outcome.
type Result struct {
	Text string
	// DetectedSourceLang equals the request source unless the provider detected another language.
	DetectedSourceLang string
}
