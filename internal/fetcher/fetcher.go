// Package fetcher issues HTTP requests against a bot-hostile origin. It
// rotates browser identities, paces requests with randomized delays,
// supports single and pooled outbound proxies, and retries blocked
// requests a bounded number of times.
package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mixscout/mixscout/config"
)

const defaultMaxAttempts = 3

// Config controls pacing, retries and proxying for one fetcher instance.
type Config struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	CooldownMin time.Duration
	CooldownMax time.Duration
	MaxAttempts int
	Timeout     time.Duration
	Proxy       config.ProxyConfig
}

// ConfigFrom maps the application configuration onto fetcher settings.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MinDelay:    time.Duration(cfg.MixesDB.MinDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.MixesDB.MaxDelayMs) * time.Millisecond,
		CooldownMin: time.Duration(cfg.MixesDB.CooldownMinMs) * time.Millisecond,
		CooldownMax: time.Duration(cfg.MixesDB.CooldownMaxMs) * time.Millisecond,
		MaxAttempts: cfg.MixesDB.MaxAttempts,
		Timeout:     time.Duration(cfg.MixesDB.TimeoutSeconds) * time.Second,
		Proxy:       cfg.Proxy,
	}
}

// Fetcher is a stealth HTTP session. The identity and proxy are the only
// state shared between calls; both are guarded and re-rolled after a block.
type Fetcher struct {
	cfg    Config
	client *http.Client

	mu       sync.Mutex
	identity identity
	proxyURL *url.URL
}

// New constructs a fetcher with a freshly rolled identity and, when
// configured, an initial proxy selection.
func New(cfg Config) *Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	f := &Fetcher{
		cfg:      cfg,
		identity: newIdentity(),
	}
	if proxyURL, err := pickProxy(cfg.Proxy); err != nil {
		slog.Warn("Invalid proxy configuration, continuing without proxy", "error", err)
	} else {
		f.proxyURL = proxyURL
	}

	f.client = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &http.Transport{Proxy: f.proxyFor},
	}
	return f
}

type options struct {
	noDelay bool
	form    url.Values
}

// Option adjusts a single Fetch call.
type Option func(*options)

// WithoutDelay skips the pre-request pacing delay. Used for calls that are
// parallel-safe or cache-priming and must not serialize behind the jitter.
func WithoutDelay() Option {
	return func(o *options) { o.noDelay = true }
}

// WithForm sends the values as an URL-encoded POST body.
func WithForm(form url.Values) Option {
	return func(o *options) { o.form = form }
}

// Fetch performs one logical request with up to MaxAttempts tries. Blocked
// responses (403) and transport failures trigger a cooldown, an identity
// re-roll and, in proxy-pool mode, a proxy re-roll before the retry. Proxy
// credential rejections and any other HTTP error propagate immediately.
func (f *Fetcher) Fetch(ctx context.Context, method, rawURL string, opts ...Option) ([]byte, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := f.sleep(ctx, f.cfg.CooldownMin, f.cfg.CooldownMax); err != nil {
				return nil, err
			}
			f.reroll()
			slog.Debug("Retrying request with fresh identity", "url", rawURL, "attempt", attempt)
		} else if !o.noDelay {
			if err := f.sleep(ctx, f.cfg.MinDelay, f.cfg.MaxDelay); err != nil {
				return nil, err
			}
		}

		body, err := f.do(ctx, method, rawURL, o)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}
		slog.Warn("Request blocked or failed, will retry", "url", rawURL, "attempt", attempt, "error", err)
	}

	return nil, &FetchError{URL: rawURL, Attempts: f.cfg.MaxAttempts, Err: lastErr}
}

// FetchPage downloads a single page. Convenience wrapper used by callers
// that only ever issue plain GETs.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	return f.Fetch(ctx, http.MethodGet, rawURL)
}

func (f *Fetcher) do(ctx context.Context, method, rawURL string, o options) ([]byte, error) {
	var body io.Reader
	if o.form != nil {
		body = strings.NewReader(o.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	for key, value := range f.identity.headers {
		req.Header.Set(key, value)
	}
	f.mu.Unlock()

	if o.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if isAuthRejection(err) {
			return nil, &AuthError{URL: rawURL, Err: err}
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusProxyAuthRequired:
		return nil, &AuthError{URL: rawURL}
	case resp.StatusCode >= 400:
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return decompress(raw, resp.Header.Get("Content-Encoding")), nil
}

// retryable reports whether rotating identity/proxy and trying again can
// help: blocks (403) and transport errors, but never credential rejections
// or other HTTP statuses.
func retryable(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusForbidden
	}
	return true
}

// reroll replaces the session identity and, in pool mode, the proxy.
func (f *Fetcher) reroll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.identity = newIdentity()
	if f.cfg.Proxy.Single == "" && len(f.cfg.Proxy.Pool) > 0 {
		if proxyURL, err := pickProxy(f.cfg.Proxy); err == nil {
			f.proxyURL = proxyURL
		}
	}
}

func (f *Fetcher) proxyFor(*http.Request) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proxyURL, nil
}

// sleep pauses for a random duration in [min, max] without blocking other
// requests; context cancellation cuts the wait short.
func (f *Fetcher) sleep(ctx context.Context, min, max time.Duration) error {
	if min < 0 {
		min = 0
	}
	delay := min
	if max > min {
		delay += time.Duration(rand.Int63n(int64(max - min)))
	}
	if delay == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
