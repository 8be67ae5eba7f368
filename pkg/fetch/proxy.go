package fetch

import (
	"context"
	"encoding/json"
	"net/http"
)

// ProxyFailureStatus is written, without a body, for every proxy failure.
// Callers cannot tell failure causes apart; the cause is only logged.
const ProxyFailureStatus = http.StatusBadRequest

// ProxyFetch fetches url and writes the parsed JSON to sink with status 200,
// or ProxyFailureStatus with no body on any error. The sink is written
// exactly once.
func (f *Fetcher) ProxyFetch(ctx context.Context, url string, sink ResponseSink) {
	status, body := f.proxy(ctx, url)
	if err := sink.WriteResponse(status, body); err != nil {
		f.log.WarnObj("proxy response write failed", "proxy_write_error", map[string]any{
			"url":    url,
			"status": status,
			"error":  err.Error(),
		})
	}
}

func (f *Fetcher) proxy(ctx context.Context, url string) (int, []byte) {
	result, err := f.Get(ctx, url)
	if err != nil {
		f.log.WarnObj("proxy fetch failed", "proxy_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return ProxyFailureStatus, nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		f.log.WarnObj("proxy encode failed", "proxy_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return ProxyFailureStatus, nil
	}
	return http.StatusOK, body
}
