// Package fetch issues HTTP GETs and parses their bodies as JSON, either one
// URL at a time, as a concurrent batch, or proxied into a response sink.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
	"github.com/samvad-hq/samvad-json-relay/pkg/httpclient"
)

// ErrFetchFailed is the single failure category: the request or its JSON
// parse failed. Network errors, rejected statuses and malformed bodies all
// wrap it.
var ErrFetchFailed = errors.New("request or parse failed")

// Options tunes a Fetcher.
type Options struct {
	// Headers are sent with every request.
	Headers map[string]string
	// RequireSuccessStatus rejects non-2xx responses even when their body is
	// valid JSON. Off by default: only the body decides.
	RequireSuccessStatus bool
}

// Fetcher performs JSON GETs through an httpclient.Client.
type Fetcher struct {
	client httpclient.Client
	opts   Options
	log    Logger
}

// New builds a Fetcher. A nil client falls back to a resty client with no
// timeout of its own.
func New(client httpclient.Client, opts Options, log Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	return &Fetcher{
		client: client,
		opts:   opts,
		log:    ensureLogger(log),
	}
}

// Get fetches url and returns its body parsed as JSON.
func (f *Fetcher) Get(ctx context.Context, url string) (domain.Result, error) {
	result, err := f.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
	}
	return result, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (domain.Result, error) {
	resp, err := f.client.Get(ctx, url, f.opts.Headers)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	status := resp.StatusCode()
	if f.opts.RequireSuccessStatus && (status < 200 || status > 299) {
		return nil, fmt.Errorf("status %d", status)
	}

	body := resp.Body()
	result, err := decodeJSON(body)
	if err != nil {
		f.log.WarnObj("response body is not json", "fetch_decode_error", map[string]any{
			"url":          url,
			"status":       status,
			"content_type": resp.Header("Content-Type"),
			"body_hint":    bodyHint(body),
			"error":        err.Error(),
		})
		return nil, err
	}

	f.log.DebugObj("fetched json", "fetch_result", map[string]any{
		"url":    url,
		"status": status,
		"bytes":  len(body),
	})
	return result, nil
}
