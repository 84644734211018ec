package feature

import (
	"cmp"
	"context"
	"fmt"
	"reflect"

	json "github.com/json-iterator/go"

	"github.com/kbukum/oswald/di"
	apperrors "github.com/kbukum/oswald/errors"
)

// Request is a command or query routed by its type key.
type Request interface {
	RequestType() string
}

// CommandHandler executes a command and reports only failure.
type CommandHandler[C Request] interface {
	Execute(ctx context.Context, cmd C) error
}

// QueryHandler executes a query and returns its result.
type QueryHandler[Q Request, R any] interface {
	Execute(ctx context.Context, query Q) (R, error)
}

// Kind distinguishes commands from queries.
type Kind int

const (
	KindCommand Kind = iota
	KindQuery
)

func (k Kind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "command"
}

// Metadata declares what a feature reacts to and what serves it.
type Metadata struct {
	// Trigger is the type key of the request this feature handles. When
	// empty it is taken from the request type's RequestType.
	Trigger string
	// Handler describes how the container constructs the handler.
	Handler di.Descriptor
}

type invoker func(ctx context.Context, handler any, req Request) (any, error)

type decoder func(body []byte) (Request, error)

// Slice is a self-contained feature unit. Only slices built by Command or
// Query are accepted by Dispatcher.RegisterFeature.
type Slice struct {
	name        string
	kind        Kind
	trigger     string
	requestType string
	handler     di.Descriptor
	invoke      invoker
	decode      decoder
	marked      bool
}

// Name returns the feature name.
func (s *Slice) Name() string { return s.name }

// Kind returns whether the feature serves a command or a query.
func (s *Slice) Kind() Kind { return s.kind }

// Trigger returns the request type key the feature reacts to.
func (s *Slice) Trigger() string { return s.trigger }

// RequestType returns the type key reported by the feature's request type.
func (s *Slice) RequestType() string { return s.requestType }

// Handler returns the handler descriptor.
func (s *Slice) Handler() di.Descriptor { return s.handler }

// Command declares a feature whose handler implements CommandHandler[C].
func Command[C Request](name string, meta Metadata) *Slice {
	requestType := requestTypeOf[C]()
	return &Slice{
		name:        name,
		kind:        KindCommand,
		trigger:     cmp.Or(meta.Trigger, requestType),
		requestType: requestType,
		handler:     meta.Handler,
		marked:      true,
		invoke: func(ctx context.Context, h any, req Request) (any, error) {
			handler, ok := h.(CommandHandler[C])
			if !ok {
				return nil, apperrors.TypeMismatch("handler "+meta.Handler.Key(), h, new(CommandHandler[C]))
			}
			cmd, ok := req.(C)
			if !ok {
				return nil, apperrors.TypeMismatch("request "+meta.Trigger, req, *new(C))
			}
			return nil, handler.Execute(ctx, cmd)
		},
		decode: decodeInto[C],
	}
}

// Query declares a feature whose handler implements QueryHandler[Q, R].
func Query[Q Request, R any](name string, meta Metadata) *Slice {
	requestType := requestTypeOf[Q]()
	return &Slice{
		name:        name,
		kind:        KindQuery,
		trigger:     cmp.Or(meta.Trigger, requestType),
		requestType: requestType,
		handler:     meta.Handler,
		marked:      true,
		invoke: func(ctx context.Context, h any, req Request) (any, error) {
			handler, ok := h.(QueryHandler[Q, R])
			if !ok {
				return nil, apperrors.TypeMismatch("handler "+meta.Handler.Key(), h, new(QueryHandler[Q, R]))
			}
			query, ok := req.(Q)
			if !ok {
				return nil, apperrors.TypeMismatch("request "+meta.Trigger, req, *new(Q))
			}
			result, err := handler.Execute(ctx, query)
			if err != nil {
				return nil, err
			}
			return result, nil
		},
		decode: decodeInto[Q],
	}
}

// requestTypeOf returns the type key of T. Pointer types are asked through a
// fresh value; interface types have no key.
func requestTypeOf[T Request]() string {
	var req T
	switch t := reflect.TypeFor[T](); t.Kind() {
	case reflect.Interface:
		return ""
	case reflect.Pointer:
		req = reflect.New(t.Elem()).Interface().(T)
	}
	return req.RequestType()
}

// requestKey reads req's type key, failing instead of panicking on a nil
// pointer whose RequestType dereferences its receiver.
func requestKey(req Request) (key string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperrors.InvalidInput("request", fmt.Sprintf("cannot read the type of %T: %v", req, rec))
		}
	}()
	return req.RequestType(), nil
}

func decodeInto[T Request](body []byte) (Request, error) {
	var req T
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.InvalidInput("body", fmt.Sprintf("cannot decode %T: %v", req, err))
	}
	return req, nil
}

// Info describes a registered feature.
type Info struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Trigger   string `json:"trigger"`
	Handler   string `json:"handler"`
	Singleton bool   `json:"singleton"`
}

func (s *Slice) info() Info {
	return Info{
		Name:      s.name,
		Kind:      s.kind.String(),
		Trigger:   s.trigger,
		Handler:   s.handler.Key(),
		Singleton: s.handler.IsSingleton(),
	}
}
