package management

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
	"github.com/k8poc/backend/internal/metrics"
	"github.com/k8poc/backend/internal/repository"
	"github.com/k8poc/backend/internal/server"
)

// ServerParams are the Fx dependencies of the management listener.
type ServerParams struct {
	fx.In
	Lifecycle  fx.Lifecycle
	Cfg        *config.ManagementConfig
	ServerCfg  *config.ServerConfig
	Repository repository.EmployeeRepository
	Recorder   metrics.HTTPRecorder
}

// RegisterManagementServer starts the management listener when app.management.enabled is set.
func RegisterManagementServer(p ServerParams) {
	if !p.Cfg.Enabled {
		logger.Infof("Management server is disabled.")
		return
	}

	var registry *prometheus.Registry
	if rp, ok := p.Recorder.(RegistryProvider); ok {
		registry = rp.GetRegistry()
	} else {
		logger.Debugf("Metrics recorder exposes no Prometheus registry. '%s' is not mounted.", p.Cfg.MetricsPath)
	}

	router := NewRouter(p.Cfg, NewHandler(p.Repository), registry)
	srv := server.NewHTTPServer("management", p.Cfg.Port, router,
		time.Duration(p.ServerCfg.ReadTimeoutSeconds)*time.Second,
		time.Duration(p.ServerCfg.WriteTimeoutSeconds)*time.Second,
		time.Duration(p.ServerCfg.ShutdownTimeoutSeconds)*time.Second,
	)
	p.Lifecycle.Append(fx.Hook{
		OnStart: srv.Start,
		OnStop:  srv.Stop,
	})
}

// Module starts the management server.
var Module = fx.Options(
	fx.Invoke(RegisterManagementServer),
)
