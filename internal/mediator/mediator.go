// Package mediator dispatches commands and queries to their handlers.
//
// Every use case is a request type with exactly one registered handler.
// Callers (HTTP handlers, the MCP server, tests) only ever call Send and
// never see the repositories behind a handler.
//
//	m := mediator.New(logger, nil)
//	mediator.MustRegister[sales.GetSaleByIDQuery, sales.SaleView](m, handler)
//	view, err := mediator.Send[sales.SaleView](ctx, m, sales.GetSaleByIDQuery{SaleID: 1})
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"api_commerce/internal/apperror"
	"api_commerce/internal/metrics"
)

var (
	// ErrNoHandler is returned when no handler with the requested output
	// type is registered for a request type.
	ErrNoHandler = errors.New("no handler registered")

	// ErrDuplicateHandler is returned when a request type already has a handler.
	ErrDuplicateHandler = errors.New("handler already registered")
)

// Handler handles requests of type I, producing O.
type Handler[I, O any] interface {
	Handle(ctx context.Context, req I) (O, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[I, O any] func(ctx context.Context, req I) (O, error)

func (f HandlerFunc[I, O]) Handle(ctx context.Context, req I) (O, error) {
	return f(ctx, req)
}

// Mediator maps request types to handlers.
type Mediator struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]any
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates an empty Mediator. Both arguments may be nil.
func New(logger *zap.Logger, m *metrics.Metrics) *Mediator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mediator{
		handlers: map[reflect.Type]any{},
		logger:   logger,
		metrics:  m,
	}
}

// Register binds h to request type I.
func Register[I, O any](m *Mediator, h Handler[I, O]) error {
	key := reflect.TypeFor[I]()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.handlers[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, key)
	}
	m.handlers[key] = h
	return nil
}

// MustRegister is Register for startup wiring; it panics on duplicates.
func MustRegister[I, O any](m *Mediator, h Handler[I, O]) {
	if err := Register(m, h); err != nil {
		panic(err)
	}
}

// Registered reports whether request type I has a handler producing O.
func Registered[I, O any](m *Mediator) bool {
	_, ok := lookup[I, O](m)
	return ok
}

func lookup[I, O any](m *Mediator) (Handler[I, O], bool) {
	m.mu.RLock()
	raw, ok := m.handlers[reflect.TypeFor[I]()]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	h, ok := raw.(Handler[I, O])
	return h, ok
}

// Send dispatches req to the handler registered for its type.
func Send[O, I any](ctx context.Context, m *Mediator, req I) (O, error) {
	name := reflect.TypeFor[I]().Name()

	h, ok := lookup[I, O](m)
	if !ok {
		var zero O
		err := apperror.Wrap(apperror.KindInternal,
			fmt.Errorf("%w: %s", ErrNoHandler, name), "internal error")
		m.logger.Error("dispatch failed", zap.String("request", name), zap.Error(err))
		return zero, err
	}

	start := time.Now()
	out, err := h.Handle(ctx, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		kind := apperror.KindOf(err)
		outcome = kind.String()
		fields := []zap.Field{
			zap.String("request", name),
			zap.String("kind", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		}
		if kind == apperror.KindInternal {
			m.logger.Error("request failed", fields...)
		} else {
			m.logger.Warn("request rejected", fields...)
		}
	} else {
		m.logger.Debug("request handled", zap.String("request", name), zap.Duration("elapsed", elapsed))
	}
	m.metrics.ObserveRequest(name, outcome, elapsed.Seconds())

	return out, err
}
