package metrics

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

// Params are the Fx dependencies shared by the constructors in this package.
type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Cfg       *config.Config
}

// NewHTTPRecorderFromConfig selects the HTTPRecorder named by app.metrics.exporter.
func NewHTTPRecorderFromConfig(p Params) (HTTPRecorder, error) {
	switch p.Cfg.App.Metrics.Exporter {
	case config.MetricsExporterPrometheus:
		logger.Debugf("Using Prometheus HTTP metrics recorder.")
		return NewPrometheusRecorder(), nil
	case config.MetricsExporterOTLP:
		recorder, err := NewOTLPRecorder(context.Background(), p.Cfg.App.Metrics, p.Cfg.App.Tracing.ServiceName)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Infof("Shutting down OTLP metrics exporter...")
				return recorder.Shutdown(ctx)
			},
		})
		return recorder, nil
	case config.MetricsExporterNone, "":
		return NewNoOpRecorder(), nil
	default:
		return nil, fmt.Errorf("unknown metrics exporter: %s", p.Cfg.App.Metrics.Exporter)
	}
}

// NewTracerProviderFromConfig builds the tracer provider and flushes it on stop.
func NewTracerProviderFromConfig(p Params) (*TracerProvider, error) {
	tp, err := NewTracerProvider(context.Background(), p.Cfg.App.Tracing)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	return tp, nil
}

// Module provides HTTPRecorder and *TracerProvider.
var Module = fx.Options(
	fx.Provide(NewHTTPRecorderFromConfig),
	fx.Provide(NewTracerProviderFromConfig),
)
