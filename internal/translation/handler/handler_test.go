package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/phonetics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/service"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/rpc"
)

type fakePairs struct {
	mu    sync.Mutex
	pairs []translation.Pair
	limit int
}

func (f *fakePairs) Submit(_ context.Context, req translation.PairRequest) (translation.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := req.Output
	warning := false
	if out == "" {
		out, warning = phonetics.TranslateString(req.Input)
	}
	p := translation.Pair{
		ID:          int64(len(f.pairs) + 1),
		Input:       req.Input,
		Output:      out,
		InNotation:  phonetics.NotationMW,
		OutNotation: phonetics.NotationIPA,
		Warning:     warning,
	}
	f.pairs = append(f.pairs, p)
	return p, nil
}

func (f *fakePairs) Get(_ context.Context, id int64) (translation.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairs {
		if p.ID == id {
			return p, nil
		}
	}
	return translation.Pair{}, apperrors.Newf(apperrors.ErrPairNotFound, http.StatusNotFound, "pair %d not found", id)
}

func (f *fakePairs) List(_ context.Context, limit int) ([]translation.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	if len(f.pairs) <= limit {
		return append([]translation.Pair(nil), f.pairs...), nil
	}
	return append([]translation.Pair(nil), f.pairs[:limit]...), nil
}

type fakeCache struct {
	hits, misses int64
	deleted      int64
	forgotten    []string
	err          error
}

func (c *fakeCache) Stats() (int64, int64) { return c.hits, c.misses }

func (c *fakeCache) Invalidate(context.Context) (int64, error) {
	return c.deleted, c.err
}

func (c *fakeCache) Forget(_ context.Context, input string) error {
	if c.err != nil {
		return c.err
	}
	c.forgotten = append(c.forgotten, input)
	return nil
}

func newService() *service.Service {
	return service.New(phonetics.Default(), validator.New(32), service.Options{})
}

func newHandler(t *testing.T, deps Deps) *Handler {
	t.Helper()
	return New(newService(), deps, Config{
		SamplesFile:       filepath.Join("..", "..", "..", "data", "testdata.txt"),
		SampleConcurrency: 2,
		DefaultPairLimit:  5,
		MaxPairLimit:      10,
	})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestTranslatePost(t *testing.T) {
	h := newHandler(t, Deps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(`{"input":"kat"}`))
	rec := httptest.NewRecorder()
	h.Translate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[translation.TranslateResponse](t, rec)
	want := translation.TranslateResponse{
		Input:   "kat",
		Output:  "kæt",
		Tokens:  []string{"k", "a", "t"},
		Symbols: []string{"k", "æ", "t"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateQueryWarning(t *testing.T) {
	h := newHandler(t, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/translate?q="+url.QueryEscape("k@t"), nil)
	rec := httptest.NewRecorder()
	h.TranslateQuery(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[translation.TranslateResponse](t, rec)
	if got.Output != "k@t" || !got.Warning || got.Message != phonetics.WarningMessage {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	h := newHandler(t, Deps{})

	rec := httptest.NewRecorder()
	h.TranslateQuery(rec, httptest.NewRequest(http.MethodGet, "/api/v1/translate", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[translation.TranslateResponse](t, rec)
	if got.Output != "" || got.Warning || len(got.Tokens) != 0 || got.Tokens == nil {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestTranslateBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"input":`},
		{"unknown field", `{"text":"kat"}`},
		{"trailing data", `{"input":"kat"}{"input":"t"}`},
		{"too long", `{"input":"` + strings.Repeat("a", 33) + `"}`},
	}
	h := newHandler(t, Deps{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Translate(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
			body := decode[map[string]any](t, rec)
			if body["error"] == "" || body["error"] == nil {
				t.Errorf("missing error message: %v", body)
			}
		})
	}
}

func TestSymbols(t *testing.T) {
	h := newHandler(t, Deps{})

	rec := httptest.NewRecorder()
	h.Symbols(rec, httptest.NewRequest(http.MethodGet, "/api/v1/symbols", nil))

	got := decode[translation.SymbolsResponse](t, rec)
	if got.Notation != phonetics.NotationMW || got.Target != phonetics.NotationIPA {
		t.Errorf("notation = %s -> %s", got.Notation, got.Target)
	}
	if got.Count == 0 || got.Count != len(got.Symbols) {
		t.Errorf("Count = %d with %d symbols", got.Count, len(got.Symbols))
	}
}

func TestPairsDisabled(t *testing.T) {
	h := newHandler(t, Deps{})
	tests := []struct {
		name    string
		handler http.HandlerFunc
		req     *http.Request
	}{
		{"submit", h.SubmitPair, httptest.NewRequest(http.MethodPost, "/api/v1/pairs", strings.NewReader(`{"input":"kat"}`))},
		{"list", h.ListPairs, httptest.NewRequest(http.MethodGet, "/api/v1/pairs", nil)},
		{"get", h.GetPair, httptest.NewRequest(http.MethodGet, "/api/v1/pairs/1", nil)},
		{"form", h.SubmitForm, httptest.NewRequest(http.MethodPost, "/submitnew", strings.NewReader("content=kat"))},
		{"cache invalidate", h.CacheInvalidate, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, tt.req)
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", rec.Code)
			}
		})
	}
}

func TestPairLifecycle(t *testing.T) {
	pairs := &fakePairs{}
	h := newHandler(t, Deps{Submitter: pairs, Pairs: pairs})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/pairs", h.SubmitPair)
	mux.HandleFunc("GET /api/v1/pairs", h.ListPairs)
	mux.HandleFunc("GET /api/v1/pairs/{id}", h.GetPair)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/pairs", strings.NewReader(`{"input":"sh"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	saved := decode[translation.Pair](t, rec)
	if saved.ID != 1 || saved.Output != "ʃ" {
		t.Errorf("unexpected saved pair %+v", saved)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairs/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := decode[translation.Pair](t, rec); got.Input != "sh" {
		t.Errorf("got pair %+v", got)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairs/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing pair status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairs/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[struct {
		Pairs []translation.Pair `json:"pairs"`
		Count int                `json:"count"`
		Limit int                `json:"limit"`
	}](t, rec)
	if list.Count != 1 || list.Limit != 5 || pairs.limit != 5 {
		t.Errorf("list = %+v, store limit %d", list, pairs.limit)
	}

	for _, q := range []string{"0", "11", "x"} {
		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pairs?limit="+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestSubmitPairValidation(t *testing.T) {
	pairs := &fakePairs{}
	h := newHandler(t, Deps{Submitter: pairs, Pairs: pairs})

	rec := httptest.NewRecorder()
	h.SubmitPair(rec, httptest.NewRequest(http.MethodPost, "/api/v1/pairs", strings.NewReader(`{"input":"  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	if body.Fields["input"] == "" {
		t.Errorf("expected an input field error, got %+v", body)
	}
	if len(pairs.pairs) != 0 {
		t.Errorf("invalid pair was stored")
	}
}

func TestSubmitForm(t *testing.T) {
	pairs := &fakePairs{}
	h := newHandler(t, Deps{Submitter: pairs, Pairs: pairs})

	form := url.Values{"content": {"kat"}}
	req := httptest.NewRequest(http.MethodPost, "/submitnew", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.SubmitForm(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %s)", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if len(pairs.pairs) != 1 || pairs.pairs[0].Output != "kæt" {
		t.Errorf("stored pairs = %+v", pairs.pairs)
	}
}

func TestIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t, Deps{}).Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "placeholder") || strings.Contains(body, "<form") {
		t.Errorf("unexpected index page without pairs:\n%s", body)
	}

	pairs := &fakePairs{}
	rec = httptest.NewRecorder()
	newHandler(t, Deps{Submitter: pairs}).Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Body.String(), `action="submitnew"`) {
		t.Errorf("expected the submission form when pairs are enabled")
	}
}

func TestTestPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	if err := os.WriteFile(path, []byte("kat\nk@t\n"), 0644); err != nil {
		t.Fatalf("writing samples: %v", err)
	}
	h := New(newService(), Deps{}, Config{SamplesFile: path, SampleConcurrency: 2})

	rec := httptest.NewRecorder()
	h.TestPage(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "kat ==&gt; kæt") {
		t.Errorf("missing clean line in:\n%s", body)
	}
	if !strings.Contains(body, "k@t ==&gt; k@t") || !strings.Contains(body, "WARNING:") {
		t.Errorf("missing warning line in:\n%s", body)
	}
	if strings.Count(body, "WARNING:") != 1 {
		t.Errorf("expected exactly one warning in:\n%s", body)
	}

	// The file is re-read on every request.
	if err := os.WriteFile(path, []byte("sh\n"), 0644); err != nil {
		t.Fatalf("rewriting samples: %v", err)
	}
	rec = httptest.NewRecorder()
	h.TestPage(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if !strings.Contains(rec.Body.String(), "sh ==&gt; ʃ") {
		t.Errorf("page did not pick up the rewritten file:\n%s", rec.Body)
	}
}

func TestTestPageBundledSamples(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t, Deps{}).TestPage(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if strings.Count(rec.Body.String(), "<li>") == 0 {
		t.Error("bundled samples rendered no lines")
	}
}

func TestTestPageMissingFile(t *testing.T) {
	h := New(newService(), Deps{}, Config{SamplesFile: filepath.Join(t.TempDir(), "none.txt")})
	rec := httptest.NewRecorder()
	h.TestPage(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCacheEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t, Deps{}).CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if got := decode[map[string]any](t, rec); got["status"] != "disabled" {
		t.Errorf("stats without cache = %v", got)
	}

	c := &fakeCache{hits: 3, misses: 1, deleted: 7}
	h := newHandler(t, Deps{Cache: c})

	rec = httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	stats := decode[map[string]any](t, rec)
	if stats["hit_rate"] != "75.0%" || stats["total"] != float64(4) {
		t.Errorf("stats = %v", stats)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec); got["keys_deleted"] != float64(7) {
		t.Errorf("invalidate = %v", got)
	}

	c.err = context.DeadlineExceeded
	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failed invalidate status = %d, want 500", rec.Code)
	}
}

func TestCacheInvalidateSingleInput(t *testing.T) {
	c := &fakeCache{deleted: 7}
	h := newHandler(t, Deps{Cache: c})

	rec := httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate?input=sh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["input"] != "sh" || got["keys_deleted"] != nil {
		t.Errorf("response = %v", got)
	}
	if diff := cmp.Diff([]string{"sh"}, c.forgotten); diff != "" {
		t.Errorf("forgotten inputs (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate?input=", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty input status = %d, want 400", rec.Code)
	}

	c.err = context.DeadlineExceeded
	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate?input=kat", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("failed forget status = %d, want 500", rec.Code)
	}
}

func TestRPC(t *testing.T) {
	s := rpc.NewServer()
	RegisterRPC(s, newService())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.Serve(ln)
	t.Cleanup(s.Stop)

	c, err := rpc.Dial(ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var resp proto.TranslateResponse
	if err := c.Call(ctx, proto.MethodTranslate, proto.TranslateRequest{Input: "k@t"}, &resp); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if resp.Output != "k@t" || !resp.Warning || resp.Message != phonetics.WarningMessage {
		t.Errorf("unexpected response %+v", resp)
	}

	var syms proto.SymbolsResponse
	if err := c.Call(ctx, proto.MethodSymbols, proto.SymbolsRequest{}, &syms); err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	if syms.Notation != phonetics.NotationMW || len(syms.Symbols) == 0 {
		t.Errorf("unexpected symbols response: %s, %d symbols", syms.Notation, len(syms.Symbols))
	}

	err = c.Call(ctx, proto.MethodTranslate, proto.TranslateRequest{Input: strings.Repeat("a", 33)}, &resp)
	if err == nil {
		t.Error("expected an error for over-long input")
	}
}
