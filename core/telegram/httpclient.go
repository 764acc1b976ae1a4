package telegram

import (
	"net"
	"net/http"
	"time"
)

// BuildHTTPClient returns an HTTP client tuned for the Telegram API:
// keep-alive reuse, proxy support, and a response header timeout that
// outlives a long poll cycle. Retrying failed sends is the outbound
// dispatcher's job, not the transport's.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 70 * time.Second,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 65 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
