// Package router wires the translator's HTTP routes and applies the
// middleware chain.
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/handler"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/tracing"
)

// Options configures the middleware chain. Nil Limiter or Metrics disable
// the corresponding middleware; a zero RequestTimeout disables the timeout.
type Options struct {
	Checker        *health.Checker
	Limiter        *ratelimit.Limiter
	RateWindow     time.Duration
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	TraceSampling  float64
}

// New builds the translator HTTP handler.
//
// Route table:
//
//	POST   /api/v1/translate          translate a JSON body
//	GET    /api/v1/translate?q=       translate a query parameter
//	GET    /api/v1/symbols            symbol table listing
//	POST   /api/v1/pairs              save a pronunciation pair
//	GET    /api/v1/pairs              list recent pairs
//	GET    /api/v1/pairs/{id}         get one pair
//	GET    /api/v1/cache/stats        cache hit/miss counts
//	POST   /api/v1/cache/invalidate   drop cached transcriptions
//	POST   /submitnew                 HTML form pair submission
//	GET    /test                      sample data test page
//	GET    /                          landing page
//	GET    /health/live, /health/ready
//
// Middleware chain (outermost first):
//
//	RequestID -> Metrics -> CORS -> RateLimit -> Tracing -> Timeout -> mux
func New(h *handler.Handler, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/translate", h.Translate)
	mux.HandleFunc("GET /api/v1/translate", h.TranslateQuery)
	mux.HandleFunc("GET /api/v1/symbols", h.Symbols)

	mux.HandleFunc("POST /api/v1/pairs", h.SubmitPair)
	mux.HandleFunc("GET /api/v1/pairs", h.ListPairs)
	mux.HandleFunc("GET /api/v1/pairs/{id}", h.GetPair)

	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)

	mux.HandleFunc("POST /submitnew", h.SubmitForm)
	mux.HandleFunc("GET /test", h.TestPage)
	mux.HandleFunc("GET /{$}", h.Index)

	if opts.Checker != nil {
		mux.HandleFunc("GET /health/live", opts.Checker.LiveHandler())
		mux.HandleFunc("GET /health/ready", opts.Checker.ReadyHandler())
	}

	var chain http.Handler = mux
	if opts.RequestTimeout > 0 {
		chain = middleware.Timeout(opts.RequestTimeout)(chain)
	}
	chain = tracing.Middleware(opts.TraceSampling)(chain)
	if opts.Limiter != nil {
		chain = middleware.RateLimit(opts.Limiter, opts.RateWindow, opts.Metrics)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	if opts.Metrics != nil {
		chain = middleware.Metrics(opts.Metrics)(chain)
	}
	chain = middleware.RequestID(chain)

	return chain
}
