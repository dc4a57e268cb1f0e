package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/metrics"
)

// NewRouter builds the public gin engine. Only / is routed, for GET and HEAD. Other
// methods on / get 405 and every other path gets gin's default 404 response.
func NewRouter(h *Handler, recorder metrics.HTTPRecorder) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), RecordMetrics(recorder))
	r.GET("/", h.Home)
	r.HEAD("/", h.Home)
	return r
}

// NewPublicHandler wraps the router with OpenTelemetry HTTP instrumentation.
func NewPublicHandler(router *gin.Engine, tp trace.TracerProvider) http.Handler {
	return otelhttp.NewHandler(router, "http.server",
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// NewPublicServer creates the public listener from app.server.
func NewPublicServer(cfg *config.ServerConfig, handler http.Handler) *HTTPServer {
	return NewHTTPServer("public", cfg.Port, handler,
		time.Duration(cfg.ReadTimeoutSeconds)*time.Second,
		time.Duration(cfg.WriteTimeoutSeconds)*time.Second,
		time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
	)
}
