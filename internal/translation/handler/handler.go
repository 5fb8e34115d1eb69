// Package handler implements the translator's HTTP endpoints: the JSON
// translation and pair APIs, cache administration, and the HTML landing and
// sample test pages.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/service"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
)

// maxBodyBytes bounds request bodies; MaxInputLength code points of up to
// four bytes each always fit.
const maxBodyBytes = 1 << 20

// PairSubmitter is implemented by publisher.Publisher.
type PairSubmitter interface {
	Submit(ctx context.Context, req translation.PairRequest) (translation.Pair, error)
}

// PairReader is implemented by store.Store.
type PairReader interface {
	Get(ctx context.Context, id int64) (translation.Pair, error)
	List(ctx context.Context, limit int) ([]translation.Pair, error)
}

// CacheAdmin is implemented by cache.TranscriptionCache.
type CacheAdmin interface {
	Stats() (hits, misses int64)
	Invalidate(ctx context.Context) (int64, error)
	Forget(ctx context.Context, input string) error
}

// Config controls pagination and the sample page.
type Config struct {
	SamplesFile       string
	SampleConcurrency int
	DefaultPairLimit  int
	MaxPairLimit      int
}

// Handler serves the translator's HTTP API.
type Handler struct {
	svc       *service.Service
	submitter PairSubmitter
	pairs     PairReader
	cache     CacheAdmin
	cfg       Config
	logger    *slog.Logger
}

// Deps holds the optional collaborators. Nil fields disable the endpoints
// that need them, which then answer 503.
type Deps struct {
	Submitter PairSubmitter
	Pairs     PairReader
	Cache     CacheAdmin
}

// New creates a Handler.
func New(svc *service.Service, deps Deps, cfg Config) *Handler {
	if cfg.DefaultPairLimit <= 0 {
		cfg.DefaultPairLimit = 20
	}
	if cfg.MaxPairLimit < cfg.DefaultPairLimit {
		cfg.MaxPairLimit = cfg.DefaultPairLimit
	}
	return &Handler{
		svc:       svc,
		submitter: deps.Submitter,
		pairs:     deps.Pairs,
		cache:     deps.Cache,
		cfg:       cfg,
		logger:    slog.Default().With("component", "translation-handler"),
	}
}

// Translate handles POST /api/v1/translate with a JSON TranslateRequest body.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translation.TranslateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.translate(w, r, req.Input)
}

// TranslateQuery handles GET /api/v1/translate?q=.
func (h *Handler) TranslateQuery(w http.ResponseWriter, r *http.Request) {
	h.translate(w, r, r.URL.Query().Get("q"))
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request, input string) {
	resp, err := h.svc.Translate(r.Context(), input, analytics.SourceHTTP)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Symbols handles GET /api/v1/symbols.
func (h *Handler) Symbols(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.svc.Symbols())
}

// SubmitPair handles POST /api/v1/pairs.
func (h *Handler) SubmitPair(w http.ResponseWriter, r *http.Request) {
	if h.submitter == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair storage is disabled")
		return
	}
	var req translation.PairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pair, ok := h.submit(w, r, req)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusCreated, pair)
}

// SubmitForm handles POST /submitnew, the HTML form variant of SubmitPair.
// The pronunciation is read from the "content" field and the client is
// redirected to the landing page.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if h.submitter == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair storage is disabled")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	if _, ok := h.submit(w, r, translation.PairRequest{Input: r.PostForm.Get("content")}); !ok {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, req translation.PairRequest) (translation.Pair, bool) {
	if err := h.svc.Validator().ValidatePairRequest(&req); err != nil {
		h.writeValidationError(w, err)
		return translation.Pair{}, false
	}
	pair, err := h.submitter.Submit(r.Context(), req)
	if err != nil {
		h.writeAppError(w, r, err)
		return translation.Pair{}, false
	}
	return pair, true
}

// GetPair handles GET /api/v1/pairs/{id}.
func (h *Handler) GetPair(w http.ResponseWriter, r *http.Request) {
	if h.pairs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair storage is disabled")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "pair id must be a positive integer")
		return
	}
	pair, err := h.pairs.Get(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pair)
}

// ListPairs handles GET /api/v1/pairs?limit=N.
func (h *Handler) ListPairs(w http.ResponseWriter, r *http.Request) {
	if h.pairs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair storage is disabled")
		return
	}
	limit := h.cfg.DefaultPairLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > h.cfg.MaxPairLimit {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", h.cfg.MaxPairLimit))
			return
		}
		limit = parsed
	}
	pairs, err := h.pairs.List(r.Context(), limit)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	if pairs == nil {
		pairs = []translation.Pair{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"pairs": pairs,
		"count": len(pairs),
		"limit": limit,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate. With ?input= only
// that input's entry is dropped; otherwise the whole cache is cleared.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if q := r.URL.Query(); q.Has("input") {
		input := q.Get("input")
		if input == "" {
			h.writeError(w, http.StatusBadRequest, "input must not be empty")
			return
		}
		if err := h.cache.Forget(r.Context(), input); err != nil {
			logger.FromContext(r.Context()).Error("cache entry invalidation failed", "error", err)
			h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "input": input})
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		h.writeValidationError(w, err)
		return
	}
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err, "status_code", status)
	} else {
		log.Debug("request rejected", "error", err, "status_code", status)
	}

	msg := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		msg = appErr.Message
	}
	h.writeError(w, status, msg)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}
	h.writeError(w, http.StatusBadRequest, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
