// Package transport chooses how lazycommit reaches a model endpoint: through
// the proxies configured in the environment, or directly for LAN endpoints.
package transport

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// ProxyMode says whether requests go through environment proxies.
type ProxyMode int

const (
	// ProxyFromEnvironment honours HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	ProxyFromEnvironment ProxyMode = iota
	// ProxyDirect connects to the endpoint without any proxy.
	ProxyDirect
)

// String returns a human-readable name for the mode.
func (m ProxyMode) String() string {
	if m == ProxyDirect {
		return "direct"
	}
	return "environment"
}

// Config is the transport decision for one target URL.
type Config struct {
	ProxyMode ProxyMode
	// TrustEnvironment is false when proxy environment variables must be ignored.
	TrustEnvironment bool
	Timeout          time.Duration
}

var lanPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// IsLANHost reports whether host (optionally with a port) names a private
// network address, a loopback address or localhost.
func IsLANHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() {
		return true
	}
	for _, p := range lanPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsLANEndpoint reports whether baseURL points at a LAN host.
// Unparseable URLs are not LAN.
func IsLANEndpoint(baseURL string) bool {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return false
	}
	return IsLANHost(u.Hostname())
}

// Select decides the transport for baseURL. Proxies are bypassed only when
// bypass is set and the endpoint is on the LAN.
func Select(baseURL string, bypass bool, timeout time.Duration) Config {
	if bypass && IsLANEndpoint(baseURL) {
		return Config{ProxyMode: ProxyDirect, TrustEnvironment: false, Timeout: timeout}
	}
	return Config{ProxyMode: ProxyFromEnvironment, TrustEnvironment: true, Timeout: timeout}
}

// Selector carries the run-wide transport settings.
type Selector struct {
	BypassProxy bool
	Timeout     time.Duration
}

// Select decides the transport for baseURL.
func (s Selector) Select(baseURL string) Config {
	return Select(baseURL, s.BypassProxy, s.Timeout)
}

// Client builds the HTTP client for baseURL.
func (s Selector) Client(baseURL string) *http.Client {
	return NewHTTPClient(s.Select(baseURL))
}

// NewHTTPClient builds an HTTP client for cfg. It performs no I/O.
func NewHTTPClient(cfg Config) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.ProxyMode == ProxyDirect || !cfg.TrustEnvironment {
		t.Proxy = nil
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: t,
	}
}
