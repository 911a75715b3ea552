package utils

import (
	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client. Embedding *resty.Client exposes the full
// resty API while leaving room for fitsync-specific behavior (shared
// headers, instrumentation) without touching the upstream type.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns an independent HTTP client with its own connection
// pool and configuration.
//
// Example:
//
//	client := utils.NewHTTPClient()
//	resp, err := client.R().Get("https://api.fitsync.dev/health")
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}
