// Package management hosts the listener for metrics scraping and health probes.
package management

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/exception"
	"github.com/k8poc/backend/internal/logger"
	"github.com/k8poc/backend/internal/repository"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"

	readinessTimeout = 2 * time.Second
)

// RegistryProvider is implemented by recorders that expose a Prometheus registry.
type RegistryProvider interface {
	GetRegistry() *prometheus.Registry
}

// Handler serves the management endpoints.
type Handler struct {
	repo repository.EmployeeRepository
}

// NewHandler creates a Handler. repo is probed by the readiness endpoint.
func NewHandler(repo repository.EmployeeRepository) *Handler {
	return &Handler{repo: repo}
}

// Health is the liveness probe. It only reports that the process serves requests.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusUp})
}

// Ready is the readiness probe. It succeeds once the datasource answers a count of employees.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	count, err := h.repo.Count(ctx)
	if err != nil {
		if exception.IsTemporary(err) {
			logger.Warnf("Readiness check failed (temporary): %v", err)
		} else {
			logger.Errorf("Readiness check failed: %v", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": statusDown,
			"error":  exception.ExtractErrorMessage(err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusUp, "employees": count})
}

// NewRouter builds the management engine. /metrics is only mounted when registry is non-nil.
func NewRouter(cfg *config.ManagementConfig, h *Handler, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(cfg.HealthPath, h.Health)
	r.GET(cfg.ReadinessPath, h.Ready)
	if registry != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}
	return r
}
