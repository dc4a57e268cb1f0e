package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

const meterName = "github.com/k8poc/backend/internal/metrics"

// OTelRecorder is an OpenTelemetry implementation of HTTPRecorder.
type OTelRecorder struct {
	provider        *sdkmetric.MeterProvider
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewOTelRecorder creates a recorder whose measurements are collected by reader.
func NewOTelRecorder(reader sdkmetric.Reader, res *resource.Resource) (*OTelRecorder, error) {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(meterName)

	requestsTotal, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Total number of HTTP requests."))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	requestDuration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	return &OTelRecorder{
		provider:        provider,
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
	}, nil
}

// NewOTLPRecorder creates an OTelRecorder that pushes to an OTLP collector over gRPC or HTTP.
func NewOTLPRecorder(ctx context.Context, cfg config.MetricsConfig, serviceName string) (*OTelRecorder, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch cfg.OTLP.Protocol {
	case config.ProtocolHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter (%s): %w", cfg.OTLP.Protocol, err)
	}

	interval := time.Duration(cfg.ExportIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))

	logger.Infof("OTLP metrics exporter configured (protocol: %s, endpoint: %s).", cfg.OTLP.Protocol, cfg.OTLP.Endpoint)
	return NewOTelRecorder(reader, newResource(serviceName))
}

// RecordRequest implements HTTPRecorder.
func (r *OTelRecorder) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	r.requestsTotal.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown flushes pending measurements and stops the meter provider.
func (r *OTelRecorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

var _ HTTPRecorder = (*OTelRecorder)(nil)

func newResource(serviceName string) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", serviceName))
}
