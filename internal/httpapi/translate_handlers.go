package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/payloadschema"
	"github.com/ufolux/TransPop/internal/translation"
)

const defaultTargetLang = "en"

type translateResponse struct {
	Text               string                   `json:"text"`
	DetectedSourceLang string                   `json:"detected_source_lang"`
	SourceLang         string                   `json:"source_lang"`
	TargetLang         string                   `json:"target_lang"`
	Provider           translation.ProviderKind `json:"provider"`
}

type languagesResponse struct {
	Items           []language.Option          `json:"items"`
	Providers       []translation.ProviderKind `json:"providers"`
	DefaultProvider translation.ProviderKind   `json:"default_provider"`
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, languagesResponse{
		Items:           language.Options(),
		Providers:       language.ProviderKinds(),
		DefaultProvider: s.translator.DefaultProvider(),
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return failField(c, "body", err.Error())
	}
	payload, err := payloadschema.ValidateTranslateRequest(body)
	if err != nil {
		return failField(c, "body", err.Error())
	}

	req := translation.Request{
		Text:       payload.Text,
		SourceLang: language.Canonical(orDefault(payload.SourceLang, language.AutoDetect)),
		TargetLang: language.Canonical(orDefault(payload.TargetLang, defaultTargetLang)),
		Provider:   s.translator.DefaultProvider(),
	}
	if req.SourceLang == "" {
		return failField(c, "source_lang", "is not a language code")
	}
	if req.TargetLang == "" || req.TargetLang == language.AutoDetect {
		return failField(c, "target_lang", "is not a target language code")
	}
	if payload.Provider != "" {
		req.Provider, _ = language.ParseProviderKind(payload.Provider)
	}

	result, err := s.translator.Translate(c.Request().Context(), req)
	if err != nil {
		return s.translationFailure(c, req, err)
	}

	return success(c, translateResponse{
		Text:               result.Text,
		DetectedSourceLang: result.DetectedSourceLang,
		SourceLang:         req.SourceLang,
		TargetLang:         req.TargetLang,
		Provider:           req.Provider,
	})
}

// translationFailure maps gateway errors onto JSend envelopes.
func (s *Server) translationFailure(c echo.Context, req translation.Request, err error) error {
	var rejection *translation.RejectedError
	switch {
	case errors.Is(err, translation.ErrEmptyText):
		return failField(c, "text", "must not be empty")
	case errors.Is(err, translation.ErrUnknownProvider):
		return failField(c, "provider", err.Error())
	case errors.As(err, &rejection):
		return upstreamError(c, http.StatusBadGateway, rejection.Error())
	case errors.Is(err, translation.ErrInvalidConfiguration):
		return upstreamError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, translation.ErrSession),
		errors.Is(err, translation.ErrNetwork),
		errors.Is(err, translation.ErrResponseParse):
		s.logger.Warn().Err(err).Str("provider", req.Provider.String()).Msg("translation request failed")
		return upstreamError(c, http.StatusBadGateway, "Translation provider unavailable")
	default:
		s.logger.Error().Err(err).Str("provider", req.Provider.String()).Msg("translation request failed")
		return internalError(c, "Translation failed")
	}
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
