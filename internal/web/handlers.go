package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/juststeveking/lookout/internal/monitor"
	"go.uber.org/zap"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Status bool        `json:"status"`
	Value  interface{} `json:"value,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (res APIResponse) write(w http.ResponseWriter, code int) {
	body, _ := json.Marshal(res)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	w.Write(body)
}

type handlers struct {
	registry *monitor.Registry
	log      *zap.Logger
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="60">
<title>Lookout</title>
<style>
body { font-family: sans-serif; margin: 2em; }
.status { display: inline-block; margin: 4px; padding: 8px 12px; border-radius: 4px; }
.status .name { font-weight: bold; margin-right: 8px; }
.status .state, .status .value { margin-left: 4px; }
.status.active { background: #c8f0c8; }
.status.broken { background: #f8e0a0; }
.status.failed { background: #f4b0b0; }
.status.value { background: #d0e0f8; }
.status.unknown { background: #e0e0e0; }
.chart .frame { fill: none; stroke: #ccc; }
.chart .axis, .chart .time { font-size: 10px; fill: #666; }
.chart .series { fill: none; stroke-width: 1.5; }
.chart .series0 { stroke: #2060c0; }
.chart .series1 { stroke: #60a0e0; }
.chart .series2 { stroke: #a0c0f0; }
</style>
</head>
<body>
<h1>Lookout</h1>
<p class="updated">{{if .Updated.IsZero}}Waiting for the first check{{else}}Updated {{.Updated.Format "2006-01-02 15:04:05"}}{{end}}</p>
<div class="statuses">
{{.Status}}</div>
<div class="histories">
{{.History}}</div>
</body>
</html>
`))

// page renders the dashboard. The status and chart fragments are built and
// escaped by the registry.
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	status, updated := h.registry.Render()
	data := struct {
		Updated time.Time
		Status  template.HTML
		History template.HTML
	}{
		Updated: updated,
		Status:  template.HTML(status),
		History: template.HTML(h.registry.RenderHistory()),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.log.Error("failed to render page", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	APIResponse{Status: true, Value: h.registry.Snapshot()}.write(w, http.StatusOK)
}

// history serves the persisted form of the in-memory history
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.registry.Save(&buf); err != nil {
		h.log.Error("failed to serialize history", zap.Error(err))
		APIResponse{Error: err.Error()}.write(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}
