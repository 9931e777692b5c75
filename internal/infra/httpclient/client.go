// Package httpclient builds the pooled client used for identity service calls.
package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/romitgit/tc-project-service/internal/infra/config"
)

// UserAgent identifies this service to upstream APIs.
const UserAgent = "tc-project-service"

// Fallbacks for unset settings. Identity lookups sit on the invite request path,
// so responses are bounded tighter than dials.
const (
	defaultMaxIdleConnsPerHost = 20
	defaultDialTimeout         = 5 * time.Second
	defaultResponseTimeout     = 10 * time.Second
	defaultIdleConnTimeout     = 90 * time.Second
)

// New creates a pooled HTTP client. Zero settings fall back to the defaults above.
func New(cfg config.HTTPClientConfig) *http.Client {
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = defaultMaxIdleConnsPerHost
	}
	if cfg.MaxIdleConns < cfg.MaxIdleConnsPerHost {
		cfg.MaxIdleConns = cfg.MaxIdleConnsPerHost
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.TLSHandshakeTimeout <= 0 {
		cfg.TLSHandshakeTimeout = cfg.DialTimeout
	}
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = defaultResponseTimeout
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = defaultIdleConnTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &userAgentTransport{base: transport},
		Timeout:   cfg.ResponseTimeout,
	}
}

// userAgentTransport sets User-Agent on requests that carry none.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}
