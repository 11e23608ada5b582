package httpadapter

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
	"github.com/kirillkom/compliance-checker/internal/observability/metrics"
)

const defaultMaxUploadBytes int64 = 32 << 20

type Router struct {
	cfg      config.Config
	checker  ports.ComplianceChecker
	ingestor ports.DocumentIngestor
	docs     ports.DocumentReader
	renderer ports.ReportRenderer
	metrics  *metrics.HTTPServerMetrics
	page     *template.Template
}

type Option func(*Router)

func WithReportRenderer(renderer ports.ReportRenderer) Option {
	return func(rt *Router) {
		rt.renderer = renderer
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

// NewRouter wires the HTTP surface. ingestor and docs may be nil when the
// asynchronous pipeline is disabled; their routes are then not registered.
func NewRouter(
	cfg config.Config,
	checker ports.ComplianceChecker,
	ingestor ports.DocumentIngestor,
	docs ports.DocumentReader,
	opts ...Option,
) *Router {
	rt := &Router{
		cfg:      cfg,
		checker:  checker,
		ingestor: ingestor,
		docs:     docs,
		page:     uploadPage,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /{$}", rt.indexPage)
	mux.HandleFunc("POST /upload", rt.uploadPage)
	mux.HandleFunc("POST /v1/compliance/check", rt.checkDocument)
	mux.HandleFunc("GET /v1/rules", rt.listRules)
	mux.HandleFunc("GET /openapi.json", openAPIHandler())
	if rt.ingestor != nil {
		mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	}
	if rt.docs != nil {
		mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
		mux.HandleFunc("GET /v1/documents/{id}/report.pdf", rt.getDocumentReport)
	}
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var onRateLimited, onOverloaded func()
	if rt.metrics != nil {
		onRateLimited = rt.metrics.RecordRateLimited
		onOverloaded = rt.metrics.RecordBackpressureRejected
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(
		handler,
		rt.cfg.APIMaxInFlight,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond,
		onOverloaded,
	)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onRateLimited)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) maxUploadBytes() int64 {
	if rt.cfg.MaxUploadBytes > 0 {
		return rt.cfg.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
