package observability

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	exporterTimeout = 30 * time.Second
	batchTimeout    = 5 * time.Second
	meterInterval   = 30 * time.Second
)

// ShutdownFunc flushes and stops the telemetry pipeline
type ShutdownFunc func(context.Context) error

// Setup wires the OTLP trace and metric pipeline and installs the global
// providers. Telemetry is opt-in: with OTEL_ENABLED unset the globals stay
// on their no-op defaults and the returned shutdown does nothing. A failed
// exporter is logged and skipped rather than failing startup.
func Setup(ctx context.Context, serviceName, serviceVersion string) (ShutdownFunc, error) {
	logger := GetLogger().WithField("component", "telemetry")

	if !enabledFromEnv() {
		logger.Info("telemetry disabled; set OTEL_ENABLED=true to enable")
		return func(context.Context) error { return nil }, nil
	}

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}
	logger.Infof("exporting telemetry to %s", endpoint)

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("deployment.environment", environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, err
	}

	var shutdowns []ShutdownFunc

	if tp, err := newTracerProvider(ctx, endpoint, res); err != nil {
		logger.Warnf("trace exporter unavailable: %v", err)
	} else {
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}

	if mp, err := newMeterProvider(ctx, endpoint, res); err != nil {
		logger.Warnf("metric exporter unavailable: %v", err)
	} else {
		otel.SetMeterProvider(mp)
		shutdowns = append(shutdowns, mp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}
	return shutdown, nil
}

func enabledFromEnv() bool {
	v := os.Getenv("OTEL_ENABLED")
	return v == "true" || v == "1"
}

func newTracerProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(exporterTimeout),
	)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func newMeterProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithTimeout(exporterTimeout),
	)
	if err != nil {
		return nil, err
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(meterInterval),
		)),
		sdkmetric.WithResource(res),
	), nil
}
