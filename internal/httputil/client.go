package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "VibeSphere/1.0"
)

// NewClient returns an HTTP client that times out after DefaultTimeout and
// identifies itself with DefaultUserAgent unless a request sets its own.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: userAgentTransport{base: http.DefaultTransport, agent: DefaultUserAgent},
	}
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(r)
}
