package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/sample"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/logger"
)

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>IPAlizer</title></head>
<body>
<h1>Nothing yet to see here</h1>
<h2>This is still a placeholder page.</h2>
<p>Take a look at <a href="test">the test page</a> meanwhile, there may be something there.</p>
{{if .PairsEnabled}}
<form method="post" action="submitnew">
<label>Merriam-Webster pronunciation <input name="content" size="40"></label>
<button type="submit">Save</button>
</form>
{{end}}
</body></html>
`))

var testPage = template.Must(template.New("test").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>IPAlizer test page</title></head>
<body>
<h1>Test Page</h1>
<h2>Merriam-Webster to IPA output for testdata</h2>
<ol>
{{range .}}<li>{{.Input}} ==&gt; {{.Output}}{{if .Warning}}      (WARNING: {{.Message}}){{end}}</li>
{{end}}</ol>
</body></html>
`))

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, r, indexPage, struct{ PairsEnabled bool }{h.submitter != nil})
}

// TestPage handles GET /test: it translates every line of the samples file
// and lists "input ==> output" with the advisory for non-conforming lines.
// The file is read on each request.
func (h *Handler) TestPage(w http.ResponseWriter, r *http.Request) {
	lines, err := sample.ReadFile(h.cfg.SamplesFile)
	if err != nil {
		logger.FromContext(r.Context()).Error("loading samples failed", "path", h.cfg.SamplesFile, "error", err)
		http.Error(w, "sample data unavailable", http.StatusInternalServerError)
		return
	}
	results, err := sample.Run(r.Context(), h.svc.Translator(), lines, h.cfg.SampleConcurrency)
	if err != nil {
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	h.renderHTML(w, r, testPage, results)
}

func (h *Handler) renderHTML(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logger.FromContext(r.Context()).Error("rendering page failed", "page", tmpl.Name(), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
