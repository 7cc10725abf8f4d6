package observability

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cory-johannsen/hotel/internal/config"
)

// TracerProvider owns the OpenTelemetry provider and its exporter output.
type TracerProvider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewTracerProvider builds a provider from cfg. When tracing is disabled the
// provider is a no-op; otherwise spans are exported as JSON by stdouttrace to
// cfg.Output, or stdout when Output is empty.
//
// Postcondition: Returns a usable provider or a non-nil error. Callers must
// call Shutdown to flush spans and release the output file.
func NewTracerProvider(cfg config.TracingConfig) (*TracerProvider, error) {
	if !cfg.Enabled {
		return &TracerProvider{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace resource: %w", err)
	}

	w, out, err := openTraceOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(w)
	if err != nil {
		if out != nil {
			_ = out.Close()
		}
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)

	return &TracerProvider{
		provider: tp,
		shutdown: func(ctx context.Context) error {
			err := tp.Shutdown(ctx)
			if out != nil {
				if cerr := out.Close(); err == nil {
					err = cerr
				}
			}
			return err
		},
	}, nil
}

// openTraceOutput returns stdout for an empty path, else a newly created file
// which the caller owns.
func openTraceOutput(path string) (io.Writer, *os.File, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace output %s: %w", path, err)
	}
	return f, f, nil
}

var newExporter = func(w io.Writer) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithWriter(w))
}

// Provider returns the underlying trace.TracerProvider.
func (p *TracerProvider) Provider() trace.TracerProvider {
	return p.provider
}

// Tracer returns a named tracer from the provider.
func (p *TracerProvider) Tracer(name string) trace.Tracer {
	return p.provider.Tracer(name)
}

// Shutdown flushes pending spans and closes the exporter output.
func (p *TracerProvider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
