// Package session keeps the short-lived anti-abuse configuration that the
// Bing web translator requires on every request.
//
// The configuration is scraped from the translator web page, cached until its
// token expires and shared by every caller through one Manager.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ufolux/TransPop/internal/globaltime"
	"github.com/ufolux/TransPop/internal/logging"
)

const (
	// DefaultPageURL is the translator web page the configuration is scraped from.
	DefaultPageURL = "https://www.bing.com/translator"
	// DefaultIID is used when the page does not carry a data-iid attribute.
	DefaultIID = "translator.5028"
	// UserAgent is sent on every request; the provider rejects non-browser clients.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0"

	pagePath = "/translator"
	apiPath  = "/ttranslatev3?isVertical=1"
)

var (
	ErrConfigFetch = errors.New("fetch translator config")
	ErrConfigParse = errors.New("parse translator config")
)

// Ticket is an immutable snapshot of the session taken for exactly one request.
type Ticket struct {
	IG      string
	IID     string
	Key     float64
	Token   string
	Seq     int
	PageURL string
	APIURL  string
	// Cookies set by the translator page, to be replayed on the translation request.
	Cookies []*http.Cookie
}

// KeyString formats the numeric key with zero decimal places.
func (t Ticket) KeyString() string {
	return strconv.FormatFloat(t.Key, 'f', 0, 64)
}

type providerSession struct {
	ig               string
	iid              string
	key              float64
	token            string
	tokenIssuedAtMs  float64
	expiryIntervalMs float64
	requestCounter   int
}

func (s *providerSession) expired(now time.Time) bool {
	return float64(now.UnixMilli())-s.tokenIssuedAtMs > s.expiryIntervalMs
}

// Options configures a Manager.
type Options struct {
	PageURL string
	Jar     http.CookieJar
	Timeout time.Duration
	Now     func() time.Time
}

// Manager owns the cached session. All access goes through one mutex so the
// request counter never races between concurrent translations.
type Manager struct {
	client *resty.Client
	jar    http.CookieJar
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	pageURL string
	apiURL  string
	current *providerSession
}

func NewManager(opts Options, logger zerolog.Logger) *Manager {
	pageURL := strings.TrimSpace(opts.PageURL)
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	now := opts.Now
	if now == nil {
		now = globaltime.Now
	}

	jar := opts.Jar
	if jar == nil {
		// cookiejar.New only fails for a broken PublicSuffixList.
		jar, _ = cookiejar.New(nil)
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", UserAgent).
		SetCookieJar(jar)

	return &Manager{
		client:  client,
		jar:     jar,
		logger:  logging.Component(logger, "session"),
		now:     now,
		pageURL: pageURL,
		apiURL:  apiURLFor(pageURL),
	}
}

// Acquire returns a ticket backed by a non-expired session, fetching a fresh
// configuration when none is cached or the cached one expired. The request
// counter is advanced once per call, before the caller builds its request, so
// the sequence number is consumed even if that request later fails.
func (m *Manager) Acquire(ctx context.Context) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.expired(m.now()) {
		if m.current != nil {
			m.logger.Debug().Msg("translator session expired")
		}
		fresh, err := m.fetch(ctx)
		if err != nil {
			return Ticket{}, err
		}
		m.current = fresh
	}

	m.current.requestCounter++
	return Ticket{
		IG:      m.current.ig,
		IID:     m.current.iid,
		Key:     m.current.key,
		Token:   m.current.token,
		Seq:     m.current.requestCounter,
		PageURL: m.pageURL,
		APIURL:  m.apiURL,
		Cookies: m.cookies(),
	}, nil
}

// Invalidate drops the cached session so the next Acquire fetches a new one.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}

func (m *Manager) cookies() []*http.Cookie {
	target, err := url.Parse(m.apiURL)
	if err != nil {
		return nil
	}
	return m.jar.Cookies(target)
}

// fetch must be called with m.mu held.
func (m *Manager) fetch(ctx context.Context) (*providerSession, error) {
	resp, err := m.client.R().SetContext(ctx).Get(m.pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigFetch, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrConfigFetch, resp.StatusCode())
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil {
		m.rebase(raw.Request.URL)
	}

	fresh, err := parseConfig(resp.String())
	if err != nil {
		m.logger.Warn().Err(err).Int("body_bytes", len(resp.Body())).Msg("translator page did not contain a usable config")
		return nil, err
	}

	m.logger.Debug().
		Str("ig", fresh.ig).
		Str("iid", fresh.iid).
		Float64("expiry_ms", fresh.expiryIntervalMs).
		Msg("translator session fetched")
	return fresh, nil
}

// rebase follows a domain migration: when the page request ended on another
// scheme or host, every later request (including the pending one) uses it.
func (m *Manager) rebase(final *url.URL) {
	if final == nil || final.Host == "" {
		return
	}
	current, err := url.Parse(m.pageURL)
	if err == nil && strings.EqualFold(current.Host, final.Host) && current.Scheme == final.Scheme {
		return
	}

	scheme := final.Scheme
	if scheme == "" {
		scheme = "https"
	}
	base := scheme + "://" + final.Host
	m.logger.Info().
		Str("from", m.pageURL).
		Str("to", base+pagePath).
		Msg("translator endpoint moved")
	m.pageURL = base + pagePath
	m.apiURL = base + apiPath
}

func apiURLFor(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return "https://www.bing.com" + apiPath
	}
	return parsed.Scheme + "://" + parsed.Host + apiPath
}
