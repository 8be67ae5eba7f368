package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent identifies the relay to upstream servers and webhooks.
const DefaultUserAgent = "samvad-json-relay"

// Option customises the underlying resty client.
type Option func(*resty.Client)

// WithUserAgent overrides DefaultUserAgent. Per-request headers still win.
func WithUserAgent(ua string) Option {
	return func(c *resty.Client) {
		if ua != "" {
			c.SetHeader("User-Agent", ua)
		}
	}
}

// RestyClient implements Client on top of resty.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient. A zero timeout leaves requests
// bounded only by their context.
func NewRestyClient(timeout time.Duration, opts ...Option) *RestyClient {
	return &RestyClient{client: NewRestyHTTPClient(timeout, opts...)}
}

// NewRestyHTTPClient returns the configured resty.Client itself, for callers
// that need verbs other than GET.
func NewRestyHTTPClient(timeout time.Duration, opts ...Option) *resty.Client {
	c := resty.New().SetHeader("User-Agent", DefaultUserAgent)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET with the given headers and buffers the whole body.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp}, nil
}

type restyResponse struct {
	*resty.Response
}

func (r restyResponse) Header(key string) string { return r.Response.Header().Get(key) }
