package env

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// HTTP is the production Env: a real network client with a per-addon
// rate limiter and optional SOCKS5 dialer, backed by a pluggable Store
// for storage, with an injected *zap.Logger and a concrete, swappable
// storage backend.
type HTTP struct {
	client *http.Client
	store  Store
	logger *zap.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int

	seqMu   sync.Mutex
	seqKeys map[string]*sync.Mutex
}

// HTTPOption configures an HTTP Env at construction.
type HTTPOption func(*HTTP)

// WithSOCKS5Proxy routes every request through a SOCKS5 dialer, for
// addons that must be reached through a proxy.
func WithSOCKS5Proxy(addr string, auth *proxy.Auth) HTTPOption {
	return func(h *HTTP) {
		dialer, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			h.logger.Error("env: could not build SOCKS5 dialer, continuing without proxy", zap.Error(err))
			return
		}
		if transport, ok := h.client.Transport.(*http.Transport); ok {
			transport.Dial = dialer.Dial
		}
	}
}

// WithRateLimit sets the per-addon-base-URL request rate, default
// unlimited if never called.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(h *HTTP) {
		h.limit = rate.Limit(rps)
		h.burst = burst
	}
}

func NewHTTP(store Store, logger *zap.Logger, opts ...HTTPOption) *HTTP {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	client := newHTTPClient(http.DefaultTransport, defaultHTTPTimeout)
	client.Jar = jar

	h := &HTTP{
		client:   client,
		store:    store,
		logger:   logger,
		limiters: map[string]*rate.Limiter{},
		limit:    rate.Inf,
		seqKeys:  map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) limiterFor(base string) *rate.Limiter {
	h.limiterMu.Lock()
	defer h.limiterMu.Unlock()
	l, ok := h.limiters[base]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[base] = l
	}
	return l
}

func (h *HTTP) Fetch(ctx context.Context, req Request) (int, []byte, error) {
	base := req.URL
	if u, err := url.Parse(req.URL); err == nil {
		base = u.Scheme + "://" + u.Host
	}
	if err := h.limiterFor(base).Wait(ctx); err != nil {
		return 0, nil, &Error{Kind: ErrTimeout, Message: "env: rate limit wait for " + base, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return 0, nil, &Error{Kind: ErrNetwork, Message: "env: building request", Err: err}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return 0, nil, &Error{Kind: ErrNetwork, Message: fmt.Sprintf("env: fetching %s", req.URL), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: ErrNetwork, Message: "env: reading response body", Err: err}
	}
	return resp.StatusCode, body, nil
}

func (h *HTTP) GetStorage(ctx context.Context, key string) ([]byte, bool, error) {
	return h.store.Get(ctx, key)
}

func (h *HTTP) SetStorage(ctx context.Context, key string, value []byte) error {
	return h.store.Set(ctx, key, value)
}

func (h *HTTP) Now() time.Time { return time.Now() }

func (h *HTTP) ExecConcurrent(task func(context.Context) error) {
	go func() {
		if err := task(context.Background()); err != nil {
			h.logger.Error("env: concurrent task failed", zap.Error(err))
		}
	}()
}

// ExecSequential serializes tasks sharing key behind a per-key mutex so
// storage writes against the same bucket observe issue order.
func (h *HTTP) ExecSequential(key string, task func(context.Context) error) {
	h.seqMu.Lock()
	mu, ok := h.seqKeys[key]
	if !ok {
		mu = &sync.Mutex{}
		h.seqKeys[key] = mu
	}
	h.seqMu.Unlock()

	go func() {
		mu.Lock()
		defer mu.Unlock()
		if err := task(context.Background()); err != nil {
			h.logger.Error("env: sequential task failed", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (h *HTTP) FlushAnalytics(ctx context.Context, event string, props map[string]interface{}) {
	h.logger.Debug("env: analytics event", zap.String("event", event), zap.Any("props", props))
}

var _ Env = (*HTTP)(nil)
