package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/ChatPDF/internal/config"
)

// one transport for every outbound provider so the llm and embedder reuse connections
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

// NewClient returns a client sharing the pooled transport. A zero timeout
// leaves the deadline to the request context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
