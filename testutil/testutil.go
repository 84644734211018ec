// Package testutil provides helpers for tests that wire containers,
// dispatchers and features.
//
//	func TestCreateUser(t *testing.T) {
//		d, c := testutil.Dispatcher(t)
//		c.Provide(testutil.Value("Store", store))
//		...
//		testutil.RequireCode(t, err, errors.ErrCodeHandlerNotFound)
//	}
package testutil

import (
	"bytes"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/oswald/di"
	"github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/feature"
	"github.com/kbukum/oswald/logger"
)

// Container returns a fresh, independent container.
func Container(t testing.TB) *di.Container {
	t.Helper()
	return di.New(di.WithLogger(logger.Nop()))
}

// GlobalContainer clears the process-wide container and clears it again
// when the test ends.
func GlobalContainer(t testing.TB) *di.Container {
	t.Helper()
	c := di.GetInstance()
	c.Clear()
	t.Cleanup(c.Clear)
	return c
}

// Dispatcher returns a quiet dispatcher over a fresh container.
func Dispatcher(t testing.TB, opts ...feature.Option) (*feature.Dispatcher, *di.Container) {
	t.Helper()
	c := Container(t)
	base := []feature.Option{feature.WithContainer(c), feature.WithLogger(logger.Nop())}
	return feature.NewDispatcher(append(base, opts...)...), c
}

// Value describes a component that always resolves to v.
func Value(key string, v any) di.Descriptor {
	return di.Describe(key, func(di.Args) (any, error) { return v, nil }).Build()
}

// Tracer returns a tracer whose ended spans are captured by the recorder.
func Tracer(t testing.TB) (trace.Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return tp.Tracer(t.Name()), recorder
}

// Logger returns a debug-level JSON logger writing into the returned buffer.
func Logger(t testing.TB) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, t.Name(), &buf), &buf
}

// RequireCode fails the test unless err carries code.
func RequireCode(t testing.TB, err error, code errors.ErrorCode) {
	t.Helper()
	if !errors.HasCode(err, code) {
		t.Fatalf("expected error code %s, got %v", code, err)
	}
}
