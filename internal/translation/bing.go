package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/session"
)

// SessionSource hands out session tickets for the scraped provider.
type SessionSource interface {
	Acquire(ctx context.Context) (session.Ticket, error)
	Invalidate()
}

// BingProvider translates through the unofficial Bing web translator endpoint.
type BingProvider struct {
	sessions SessionSource
	client   *resty.Client
	logger   zerolog.Logger
}

func NewBingProvider(sessions SessionSource, timeout time.Duration, logger zerolog.Logger) *BingProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	// Cookies come from the session ticket, not from a jar of our own.
	client := resty.New().
		SetTimeout(timeout).
		SetCookieJar(nil).
		SetHeader("User-Agent", session.UserAgent)

	return &BingProvider{
		sessions: sessions,
		client:   client,
		logger:   logger.With().Str("provider", string(ProviderScrapedWeb)).Logger(),
	}
}

func (p *BingProvider) Kind() ProviderKind {
	return ProviderScrapedWeb
}

// Translate expects SourceLang and TargetLang already in Bing's dialect.
func (p *BingProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	ticket, err := p.sessions.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}

	endpoint := ticket.APIURL +
		"&IG=" + url.QueryEscape(ticket.IG) +
		"&IID=" + url.QueryEscape(ticket.IID) +
		"&SFX=" + strconv.Itoa(ticket.Seq)

	body := encodeOrderedForm([][2]string{
		{"fromLang", req.SourceLang},
		{"to", req.TargetLang},
		{"text", req.Text},
		{"token", ticket.Token},
		{"key", ticket.KeyString()},
		{"tryFetchingGenderDebiasedTranslations", "true"},
	})

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Referer", ticket.PageURL).
		SetCookies(ticket.Cookies).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	raw := resp.Body()
	var items []bingTranslateItem
	if err := json.Unmarshal(raw, &items); err == nil {
		if len(items) > 0 && len(items[0].Translations) > 0 {
			detected := req.SourceLang
			if items[0].DetectedLanguage != nil && items[0].DetectedLanguage.Language != "" {
				detected = items[0].DetectedLanguage.Language
			}
			return &Result{
				Text:               items[0].Translations[0].Text,
				DetectedSourceLang: detected,
			}, nil
		}
	}

	var failure bingErrorResponse
	if err := json.Unmarshal(raw, &failure); err == nil && failure.StatusCode != 0 {
		// A rejected token is not reusable; start the next call from a fresh session.
		p.sessions.Invalidate()
		msg := strings.TrimSpace(failure.ErrorMessage)
		if msg == "" {
			msg = fmt.Sprintf("bing status %d", failure.StatusCode)
		}
		return nil, rejected(ProviderScrapedWeb, msg)
	}

	p.logger.Warn().
		Int("status", resp.StatusCode()).
		Int("seq", ticket.Seq).
		Str("body", abbreviate(string(raw), 2000)).
		Msg("unexpected bing response")
	return nil, fmt.Errorf("%w: bing status %d", ErrResponseParse, resp.StatusCode())
}

type bingTranslateItem struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type bingErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}

// encodeOrderedForm builds an x-www-form-urlencoded body that keeps the given
// field order and escapes everything except ALPHA / DIGIT / "-" / "." / "_" / "~".
func encodeOrderedForm(fields [][2]string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(percentEncode(field[0]))
		b.WriteByte('=')
		b.WriteString(percentEncode(field[1]))
	}
	return b.String()
}

func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	default:
		return false
	}
}
