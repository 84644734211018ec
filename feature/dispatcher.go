package feature

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/oswald/di"
	apperrors "github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/logger"
	"github.com/kbukum/oswald/observability"
)

// Container is the part of the di container the dispatcher relies on.
type Container interface {
	Provide(d di.Descriptor) error
	Get(key string) (any, error)
}

// Dispatcher maps request type keys to features and serves requests.
type Dispatcher struct {
	container Container
	features  map[string]*Slice
	mutex     sync.RWMutex
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.DispatchMetrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithContainer resolves handlers through c instead of the process-wide container.
func WithContainer(c Container) Option {
	return func(d *Dispatcher) { d.container = c }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l.WithComponent("feature") }
}

// WithTracer sets the tracer used for serve spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// WithMetrics records dispatch metrics on m.
func WithMetrics(m *observability.DispatchMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher backed by di.GetInstance() unless
// WithContainer says otherwise.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{features: make(map[string]*Slice)}
	for _, opt := range opts {
		opt(d)
	}
	if d.container == nil {
		d.container = di.GetInstance()
	}
	if d.log == nil {
		d.log = logger.WithComponent("feature")
	}
	if d.tracer == nil {
		d.tracer = observability.Tracer()
	}
	return d
}

// RegisterFeature registers the feature's handler with the container and
// routes its trigger to it. A later registration for the same trigger wins.
func (d *Dispatcher) RegisterFeature(f any) error {
	s, ok := f.(*Slice)
	if !ok || s == nil || !s.marked {
		err := apperrors.InvalidFeature(fmt.Sprintf("%T", f))
		d.log.Debug("feature rejected", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	if strings.TrimSpace(s.trigger) == "" {
		return apperrors.Validation(fmt.Sprintf("Feature %s has no trigger", s.name)).
			WithDetail(logger.FieldFeature, s.name)
	}
	if s.requestType != "" && s.trigger != s.requestType {
		return apperrors.Validation(fmt.Sprintf("Feature %s is triggered by %s but handles %s",
			s.name, s.trigger, s.requestType)).
			WithDetail(logger.FieldFeature, s.name).
			WithDetail(logger.FieldRequestType, s.requestType)
	}

	if err := d.container.Provide(s.handler); err != nil {
		return err
	}

	d.mutex.Lock()
	_, replaced := d.features[s.trigger]
	d.features[s.trigger] = s
	d.mutex.Unlock()

	d.log.Info("feature registered", logger.Fields(
		logger.FieldFeature, s.name,
		logger.FieldRequestType, s.trigger,
		logger.FieldHandler, s.handler.Key(),
		"kind", s.kind.String(),
		"replaced", replaced,
	))
	return nil
}

// Serve routes req to the handler registered for its type and invokes it.
// Commands yield a nil result. A nil request, or a typed nil whose
// RequestType cannot run, fails with INVALID_INPUT.
func (d *Dispatcher) Serve(ctx context.Context, req Request) (result any, err error) {
	if req == nil {
		return nil, apperrors.InvalidInput("request", "request is required")
	}
	requestType, err := requestKey(req)
	if err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, observability.SpanServe,
		trace.WithAttributes(attribute.String(observability.AttrRequestType, requestType)))
	defer span.End()

	if d.metrics != nil {
		start := time.Now()
		d.metrics.RecordStart(ctx)
		defer func() {
			d.metrics.RecordEnd(ctx, requestType, outcome(err), time.Since(start))
		}()
	}
	defer func() {
		if err != nil {
			recordError(span, err)
			d.log.Debug("dispatch failed", logger.ErrorFields(requestType, err))
		}
	}()

	s, ok := d.lookup(requestType)
	if !ok {
		return nil, apperrors.HandlerNotFound(requestType)
	}
	span.SetAttributes(
		attribute.String(observability.AttrHandlerKey, s.handler.Key()),
		attribute.String(observability.AttrRequestKind, s.kind.String()),
	)

	handler, err := d.container.Get(s.handler.Key())
	if err != nil {
		return nil, err
	}
	return s.invoke(ctx, handler, req)
}

// Decode parses body into the request type registered for trigger.
func (d *Dispatcher) Decode(trigger string, body []byte) (Request, error) {
	s, ok := d.lookup(trigger)
	if !ok {
		return nil, apperrors.HandlerNotFound(trigger)
	}
	return s.decode(body)
}

// Lookup returns the feature registered for trigger.
func (d *Dispatcher) Lookup(trigger string) (Info, bool) {
	s, ok := d.lookup(trigger)
	if !ok {
		return Info{}, false
	}
	return s.info(), true
}

// Features returns the registered features sorted by trigger.
func (d *Dispatcher) Features() []Info {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	infos := make([]Info, 0, len(d.features))
	for _, s := range d.features {
		infos = append(infos, s.info())
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Trigger, b.Trigger) })
	return infos
}

// CheckHealth reports the dispatcher as degraded while no feature is registered.
func (d *Dispatcher) CheckHealth(_ context.Context) observability.Health {
	d.mutex.RLock()
	n := len(d.features)
	d.mutex.RUnlock()

	h := observability.Health{
		Name:    "dispatcher",
		Status:  observability.HealthStatusUp,
		Details: map[string]any{"features": n},
	}
	if n == 0 {
		h.Status = observability.HealthStatusDegraded
		h.Message = "no features registered"
	}
	return h
}

func (d *Dispatcher) lookup(trigger string) (*Slice, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	s, ok := d.features[trigger]
	return s, ok
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if appErr, ok := apperrors.AsAppError(err); ok {
		span.SetAttributes(attribute.String(observability.AttrErrorCode, string(appErr.Code)))
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "error"
}

// Send serves a command.
func Send[C Request](ctx context.Context, d *Dispatcher, cmd C) error {
	_, err := d.Serve(ctx, cmd)
	return err
}

// Ask serves a query and returns its result as R.
func Ask[R any](ctx context.Context, d *Dispatcher, query Request) (R, error) {
	var zero R
	result, err := d.Serve(ctx, query)
	if err != nil || result == nil {
		return zero, err
	}
	r, ok := result.(R)
	if !ok {
		return zero, apperrors.TypeMismatch("result of "+query.RequestType(), result, zero)
	}
	return r, nil
}
