package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
	"github.com/samvad-hq/samvad-json-relay/pkg/fetch"
)

const maxBatchBodyBytes = 1 << 20 // 1 MiB

// Fetcher is what the handlers need from fetch.Fetcher.
type Fetcher interface {
	ProxyFetch(ctx context.Context, url string, sink fetch.ResponseSink)
	BatchFetch(ctx context.Context, urls []string) ([]domain.Result, error)
}

// BatchRequest is the body accepted by POST /batch.
type BatchRequest struct {
	URLs []string `json:"urls"`
}

// Handler serves the relay endpoints.
type Handler struct {
	fetcher      Fetcher
	maxBatchURLs int
	log          logger.Logger
}

// NewHandler builds the handler set. maxBatchURLs <= 0 disables the limit.
func NewHandler(f Fetcher, maxBatchURLs int, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{fetcher: f, maxBatchURLs: maxBatchURLs, log: log}
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Proxy fetches the url query parameter and relays its JSON. Upstream
// requests are detached from the client connection and run to completion.
func (h *Handler) Proxy(w http.ResponseWriter, r *http.Request) {
	h.fetcher.ProxyFetch(context.WithoutCancel(r.Context()), r.URL.Query().Get("url"), fetch.NewHTTPSink(w))
}

// Batch fetches every URL of the request body and responds with the results
// array. Any failure, including a malformed request, yields an empty 400.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	sink := fetch.NewHTTPSink(w)

	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)).Decode(&req); err != nil {
		h.log.WarnObj("batch request rejected", "batch_error", map[string]any{"error": err.Error()})
		_ = sink.WriteResponse(fetch.ProxyFailureStatus, nil)
		return
	}
	if h.maxBatchURLs > 0 && len(req.URLs) > h.maxBatchURLs {
		h.log.WarnObj("batch request rejected", "batch_error", map[string]any{
			"urls":  len(req.URLs),
			"limit": h.maxBatchURLs,
		})
		_ = sink.WriteResponse(fetch.ProxyFailureStatus, nil)
		return
	}

	results, err := h.fetcher.BatchFetch(context.WithoutCancel(r.Context()), req.URLs)
	if err != nil {
		h.log.WarnObj("batch fetch failed", "batch_error", map[string]any{
			"urls":  len(req.URLs),
			"error": err.Error(),
		})
		_ = sink.WriteResponse(fetch.ProxyFailureStatus, nil)
		return
	}

	body, err := json.Marshal(results)
	if err != nil {
		h.log.WarnObj("batch encode failed", "batch_error", map[string]any{"error": err.Error()})
		_ = sink.WriteResponse(fetch.ProxyFailureStatus, nil)
		return
	}
	if err := sink.WriteResponse(http.StatusOK, body); err != nil {
		h.log.WarnObj("batch response write failed", "batch_error", map[string]any{"error": err.Error()})
	}
}
