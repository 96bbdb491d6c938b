package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultGoogleEndpoint is the public endpoint used by the gtx web client.
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleProvider translates through the free Google translate_a endpoint.
type GoogleProvider struct {
	endpoint string
	client   *resty.Client
	logger   zerolog.Logger
}

func NewGoogleProvider(endpoint string, timeout time.Duration, logger zerolog.Logger) *GoogleProvider {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleProvider{
		endpoint: endpoint,
		client:   resty.New().SetTimeout(timeout),
		logger:   logger.With().Str("provider", string(ProviderFreeEndpoint)).Logger(),
	}
}

func (p *GoogleProvider) Kind() ProviderKind {
	return ProviderFreeEndpoint
}

func (p *GoogleProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("client", "gtx").
		SetQueryParam("sl", req.SourceLang).
		SetQueryParam("tl", req.TargetLang).
		SetQueryParam("dt", "t").
		SetQueryParam("q", req.Text).
		Get(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		p.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("body", abbreviate(resp.String(), 2000)).
			Msg("google endpoint returned an error status")
		return nil, rejected(ProviderFreeEndpoint, fmt.Sprintf("google status %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode())))
	}

	res, err := parseGoogleResponse(resp.Body(), req.SourceLang)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("body", abbreviate(resp.String(), 2000)).
			Msg("unexpected google response")
		return nil, err
	}
	return res, nil
}

// parseGoogleResponse reads [[[fragment, source, ...], ...], null, "detected", ...].
// Every segment's fragment is joined in order.
func parseGoogleResponse(body []byte, sourceLang string) (*Result, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("%w: decode google response: %w", ErrResponseParse, err)
	}
	if len(root) == 0 || !isJSONArray(root[0]) {
		return nil, fmt.Errorf("%w: google response has no segment array", ErrResponseParse)
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return nil, fmt.Errorf("%w: decode google segments: %w", ErrResponseParse, err)
	}

	var text strings.Builder
	for _, segment := range segments {
		var parts []json.RawMessage
		if err := json.Unmarshal(segment, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var fragment string
		if err := json.Unmarshal(parts[0], &fragment); err == nil {
			text.WriteString(fragment)
		}
	}

	detected := sourceLang
	if len(root) > 2 {
		var lang string
		if err := json.Unmarshal(root[2], &lang); err == nil && lang != "" {
			detected = lang
		}
	}

	return &Result{Text: text.String(), DetectedSourceLang: detected}, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
