package api

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/proxy"
)

// newHTTPClient builds a client egressing through proxyURL.
// socks5 and socks5h dial through the proxy, http and https use CONNECT.
// An empty proxyURL leaves the environment proxy settings in place.
func newHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport := cleanhttp.DefaultTransport()

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", proxyURL, err)
		}
		switch u.Scheme {
		case "socks5", "socks5h":
			dialer, err := proxy.FromURL(u, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy %q: %w", proxyURL, err)
			}
			cd, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("proxy %q does not support contexts", proxyURL)
			}
			transport.Proxy = nil
			transport.DialContext = cd.DialContext
		case "http", "https":
			transport.Proxy = http.ProxyURL(u)
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
		}
	}

	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
