package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/logger"
)

// TracerProvider is the provider handed to the HTTP instrumentation, with a shutdown hook.
type TracerProvider struct {
	trace.TracerProvider
	shutdown func(context.Context) error
}

// Shutdown flushes and stops the underlying provider. It is a no-op when tracing is disabled.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// NewTracerProvider builds a tracer provider from cfg. When tracing is disabled the
// provider records nothing. When enabled it batches spans to an OTLP collector and is
// installed as the global provider along with the W3C trace-context propagator.
func NewTracerProvider(ctx context.Context, cfg config.TracingConfig) (*TracerProvider, error) {
	if !cfg.Enabled {
		return &TracerProvider{TracerProvider: noop.NewTracerProvider()}, nil
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.OTLP.Protocol {
	case config.ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLP.Endpoint)}
		if cfg.OTLP.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter (%s): %w", cfg.OTLP.Protocol, err)
	}

	tp := newSDKTracerProvider(sdktrace.NewBatchSpanProcessor(exporter), cfg)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Infof("Tracing enabled (protocol: %s, endpoint: %s, sample ratio: %.2f).", cfg.OTLP.Protocol, cfg.OTLP.Endpoint, cfg.SampleRatio)
	return &TracerProvider{TracerProvider: tp, shutdown: tp.Shutdown}, nil
}

// NewTracerProviderWithProcessor builds an SDK-backed provider around an arbitrary span processor.
// It is not installed globally.
func NewTracerProviderWithProcessor(processor sdktrace.SpanProcessor, cfg config.TracingConfig) *TracerProvider {
	tp := newSDKTracerProvider(processor, cfg)
	return &TracerProvider{TracerProvider: tp, shutdown: tp.Shutdown}
}

func newSDKTracerProvider(processor sdktrace.SpanProcessor, cfg config.TracingConfig) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(newResource(cfg.ServiceName)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
}
