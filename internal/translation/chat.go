package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/language"
	"github.com/ufolux/TransPop/internal/settings"
)

// LanguageDetector guesses the ISO 639-1 code of a text, or returns "".
type LanguageDetector interface {
	Detect(text string) string
}

// ChatProvider translates by calling an OpenAI-compatible chat completions endpoint.
// Its configuration is read from the settings source on every request.
type ChatProvider struct {
	settings settings.Source
	detector LanguageDetector
	client   *resty.Client
	logger   zerolog.Logger
}

// NewChatProvider builds a chat provider. detector may be nil.
func NewChatProvider(source settings.Source, detector LanguageDetector, timeout time.Duration, logger zerolog.Logger) *ChatProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatProvider{
		settings: source,
		detector: detector,
		client:   resty.New().SetTimeout(timeout),
		logger:   logger.With().Str("provider", string(ProviderChatCompletion)).Logger(),
	}
}

func (p *ChatProvider) Kind() ProviderKind {
	return ProviderChatCompletion
}

func (p *ChatProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	current, err := p.settings.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	cfg := current.ChatCompletion

	endpoint, err := chatCompletionsURL(cfg.EndpointURL)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = settings.DefaultChatModel
	}

	body := chatRequest{
		Model:  model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: p.systemPrompt(req)},
			{Role: "user", Content: req.Text},
		},
	}

	r := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		r.SetAuthToken(key)
	}

	resp, err := r.Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	res, err := parseChatResponse(resp.Body(), req.SourceLang)
	if err != nil {
		p.logger.Warn().
			Err(err).
			Int("status", resp.StatusCode()).
			Str("endpoint", endpoint).
			Str("body", abbreviate(resp.String(), 2000)).
			Msg("chat completion failed")
		return nil, err
	}
	return res, nil
}

func (p *ChatProvider) systemPrompt(req Request) string {
	sourceName := language.Label(req.SourceLang)
	if req.SourceLang == language.AutoDetect && p.detector != nil {
		if code := p.detector.Detect(req.Text); code != "" {
			sourceName = language.Label(code)
		}
	}
	targetName := language.Label(req.TargetLang)
	return fmt.Sprintf(
		"You are a professional translator. Translate the following text from %s to %s. Return ONLY the translated text, no explanations or other text.",
		sourceName,
		targetName,
	)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error"`
}

func parseChatResponse(body []byte, sourceLang string) (*Result, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode chat completion: %w", ErrResponseParse, err)
	}
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != nil {
		return &Result{
			Text:               strings.TrimSpace(*parsed.Choices[0].Message.Content),
			DetectedSourceLang: sourceLang,
		}, nil
	}
	if msg := chatErrorMessage(parsed.Error); msg != "" {
		return nil, rejected(ProviderChatCompletion, msg)
	}
	return nil, fmt.Errorf("%w: chat completion has no choices[0].message.content", ErrResponseParse)
}

// chatErrorMessage accepts both {"error":{"message":"..."}} and the
// {"error":"..."} form some self-hosted servers use.
func chatErrorMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var object struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &object); err == nil {
		return strings.TrimSpace(object.Message)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	return ""
}

// chatCompletionsURL validates the configured endpoint. The URL is posted to
// exactly as configured.
func chatCompletionsURL(raw string) (string, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = settings.DefaultChatEndpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: endpoint %q: %w", ErrInvalidConfiguration, raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: endpoint %q is not an absolute URL", ErrInvalidConfiguration, raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: endpoint %q must use http or https", ErrInvalidConfiguration, raw)
	}

	return endpoint, nil
}
