package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/guileen/gridsource/datasource"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/types"
)

const maxBodyBytes = 1 << 20

type RESTHandler struct {
	registry *datasource.Registry
	metrics  *metrics.Metrics
}

func NewRESTHandler(registry *datasource.Registry, m *metrics.Metrics) *RESTHandler {
	return &RESTHandler{
		registry: registry,
		metrics:  m,
	}
}

func (h *RESTHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/datasets", func(r chi.Router) {
		r.Get("/", h.ListDatasets)
		r.Post("/{dataset}/blocks", h.RequestBlock)
		r.Post("/{dataset}/blocks:prefetch", h.PrefetchBlocks)
	})
}

// RequestBlock serves one block and reports the overlay the client should show
func (h *RESTHandler) RequestBlock(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := DecodeBlockRequest(body)
	if err != nil {
		engineErrors.LogWarning(r.Context(), err)
		writeJSON(w, http.StatusBadRequest, NewBlockResponseBody(types.BlockResponse{Err: err}, ""))
		return
	}

	overlay := &overlayNotifier{}
	resp := datasource.NewAdapter(src, overlay).RequestBlock(r.Context(), req.ToBlockRequest())
	writeJSON(w, statusOf(resp.Err), NewBlockResponseBody(resp, overlay.state))
}

// PrefetchBlocks serves a batch of blocks in parallel. Prefetched blocks never
// change the overlay.
func (h *RESTHandler) PrefetchBlocks(w http.ResponseWriter, r *http.Request) {
	src, ok := h.source(w, r)
	if !ok {
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := DecodePrefetchRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	reqs := make([]types.BlockRequest, len(req.Requests))
	for i, b := range req.Requests {
		reqs[i] = b.ToBlockRequest()
	}

	resps, err := src.Prefetch(r.Context(), reqs)
	if err != nil {
		failRequest(w, r, err)
		return
	}

	out := PrefetchResponseBody{Responses: make([]BlockResponseBody, len(resps))}
	for i, resp := range resps {
		out.Responses[i] = NewBlockResponseBody(resp, "")
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RESTHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	sources := h.registry.Sources()
	out := make([]DatasetInfo, len(sources))
	for i, src := range sources {
		out[i] = DatasetInfo{
			Name:    src.Name(),
			Records: src.Len(),
			Columns: src.Columns(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RESTHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RESTHandler) source(w http.ResponseWriter, r *http.Request) (*datasource.Source, bool) {
	src, err := h.registry.Source(chi.URLParam(r, "dataset"))
	if err != nil {
		failRequest(w, r, err)
		return nil, false
	}
	return src, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, engineErrors.Wrap(err, engineErrors.ErrCodeMalformedRequest, "read_body")
	}
	return body, nil
}

// statusOf maps an engine error to its HTTP status
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case engineErrors.IsMalformedRequest(err):
		return http.StatusBadRequest
	case engineErrors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// failRequest logs err at a level matching its status and writes it
func failRequest(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		engineErrors.LogError(r.Context(), err, logger.Int("status", status))
	} else {
		engineErrors.LogWarning(r.Context(), err, logger.Int("status", status))
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, statusCode int, err error) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     err.Error(),
		RequestID: w.Header().Get(RequestIDHeader),
	})
}
