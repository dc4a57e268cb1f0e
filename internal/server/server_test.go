package server_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
	"github.com/k8poc/backend/internal/metrics"
	"github.com/k8poc/backend/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// captureLog redirects the application logger into a buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLogLevel("INFO")
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func newTestRouter(recorder metrics.HTTPRecorder) *gin.Engine {
	return server.NewRouter(server.NewHandler(), recorder)
}

func TestHome(t *testing.T) {
	logs := captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Succefuliy Deployed and application Access now", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(logs.String(), "=======Test Main"))
}

func TestHome_LogsOncePerRequest(t *testing.T) {
	logs := captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 3, strings.Count(logs.String(), "=======Test Main"))
}

func TestHome_IgnoresInput(t *testing.T) {
	captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?name=ignored", nil)
	req.Header.Set("Accept", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, server.HomeMessage, w.Body.String())
}

func TestUnknownPath(t *testing.T) {
	logs := captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/employees"},
		{http.MethodPost, "/unknown"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "404 page not found", w.Body.String())
	}
	assert.NotContains(t, logs.String(), "=======Test Main")
}

func TestHome_LogsAboveInfoLevel(t *testing.T) {
	logs := captureLog(t)
	logger.SetLogLevel("WARN")
	t.Cleanup(func() { logger.SetLogLevel("INFO") })
	router := newTestRouter(metrics.NewNoOpRecorder())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(logs.String(), "=======Test Main"))
}

func TestHome_Head(t *testing.T) {
	logs := captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, 1, strings.Count(logs.String(), "=======Test Main"))
}

func TestHome_OtherMethodsNotAllowed(t *testing.T) {
	logs := captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "405 method not allowed", w.Body.String(), method)
	}
	assert.NotContains(t, logs.String(), "=======Test Main")
}

func TestRequestID(t *testing.T) {
	captureLog(t)
	router := newTestRouter(metrics.NewNoOpRecorder())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(server.RequestIDHeader), 36)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(server.RequestIDHeader))
}

func TestRequestLogger_RedactsCredentials(t *testing.T) {
	logs := captureLog(t)
	logger.SetLogLevel("DEBUG")
	router := newTestRouter(metrics.NewNoOpRecorder())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Cookie", "session=secret-cookie")
	router.ServeHTTP(httptest.NewRecorder(), req)

	out := logs.String()
	assert.Contains(t, out, "Incoming request")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "secret-cookie")
	assert.Contains(t, out, "Request completed")
}

func TestRecordMetrics(t *testing.T) {
	captureLog(t)
	recorder := metrics.NewPrometheusRecorder()
	router := newTestRouter(recorder)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	expected := `
# HELP http_requests_total Total number of HTTP requests by method, route and status code.
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/",status="200"} 1
http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.GetRegistry(), strings.NewReader(expected), "http_requests_total"))
}

func TestPublicHandler_Tracing(t *testing.T) {
	captureLog(t)
	spans := tracetest.NewSpanRecorder()
	tp := metrics.NewTracerProviderWithProcessor(spans, config.TracingConfig{Enabled: true, ServiceName: "test", SampleRatio: 1})
	defer tp.Shutdown(context.Background())

	handler := server.NewPublicHandler(newTestRouter(metrics.NewNoOpRecorder()), tp)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, server.HomeMessage, w.Body.String())
	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /", ended[0].Name())
}

func boundPort(t *testing.T, srv *server.HTTPServer) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestHTTPServer_Lifecycle(t *testing.T) {
	captureLog(t)
	srv := server.NewHTTPServer("test", 0, newTestRouter(metrics.NewNoOpRecorder()), time.Second, time.Second, time.Second)

	require.NoError(t, srv.Start(context.Background()))

	url := fmt.Sprintf("http://127.0.0.1:%d/", boundPort(t, srv))
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, server.HomeMessage, string(body))

	require.NoError(t, srv.Stop(context.Background()))
	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestHTTPServer_PortInUse(t *testing.T) {
	captureLog(t)
	first := server.NewHTTPServer("first", 0, http.NotFoundHandler(), time.Second, time.Second, time.Second)
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop(context.Background())

	second := server.NewHTTPServer("second", boundPort(t, first), http.NotFoundHandler(), time.Second, time.Second, time.Second)
	err := second.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
