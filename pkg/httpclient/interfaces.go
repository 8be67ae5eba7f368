package httpclient

import "context"

// Response is the part of an HTTP response the relay reads: status, one
// header at a time, and the fully buffered body.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(key string) string
}

// Client abstracts HTTP GETs so callers can inject fakes or other transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
