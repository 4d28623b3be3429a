// Package gateway serves queries over the record store as if they crossed a network:
// every call waits out a simulated latency before the engine runs.
package gateway

import (
	"context"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"leadconsole/internal/query"
)

const tracerName = "leadconsole/gateway"

// Source supplies the full collection for each query.
type Source[T any] interface {
	Load(ctx context.Context) ([]T, error)
}

type Latency interface {
	Delay() time.Duration
}

// Jitter draws a uniform delay in [Min, Max].
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

func (j Jitter) Delay() time.Duration {
	if j.Max <= j.Min {
		return max(j.Min, 0)
	}
	return j.Min + rand.N(j.Max-j.Min+1)
}

type Fixed time.Duration

func (f Fixed) Delay() time.Duration { return time.Duration(f) }

// DefaultLatency matches the 500-1000ms round trip the console was designed around.
var DefaultLatency = Jitter{Min: 500 * time.Millisecond, Max: 1000 * time.Millisecond}

// FailureInjector lets tests force a query to fail. Production gateways leave it nil.
type FailureInjector func(opts query.Options) error

type Gateway[T any] struct {
	DataKey string
	Source  Source[T]
	Schema  query.Schema[T]
	Latency Latency
	Fail    FailureInjector
	Tracer  trace.Tracer
	Log     *zap.Logger
}

func New[T any](dataKey string, src Source[T], schema query.Schema[T], latency Latency) *Gateway[T] {
	return &Gateway[T]{DataKey: dataKey, Source: src, Schema: schema, Latency: latency}
}

func (g *Gateway[T]) tracer() trace.Tracer {
	if g.Tracer != nil {
		return g.Tracer
	}
	return otel.Tracer(tracerName)
}

func (g *Gateway[T]) log() *zap.Logger {
	if g.Log != nil {
		return g.Log
	}
	return zap.NewNop()
}

// Query waits out the latency, then filters, sorts and paginates the current collection.
// It only fails when ctx ends or a FailureInjector says so.
func (g *Gateway[T]) Query(ctx context.Context, opts query.Options) (query.Result[T], error) {
	ctx, span := g.tracer().Start(ctx, "gateway.query", trace.WithAttributes(
		attribute.String("data_key", g.DataKey),
		attribute.Int("filters", len(opts.Filters)),
	))
	defer span.End()
	if p := opts.Pagination; p != nil {
		span.SetAttributes(attribute.Int("page", p.Page), attribute.Int("limit", p.Limit))
	}

	res, err := g.query(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.log().Debug("query failed", zap.String("dataKey", g.DataKey), zap.Error(err))
		return query.Result[T]{}, err
	}
	span.SetAttributes(attribute.Int("total", res.Total), attribute.Int("returned", len(res.Items)))
	return res, nil
}

func (g *Gateway[T]) query(ctx context.Context, opts query.Options) (query.Result[T], error) {
	var d time.Duration
	if g.Latency != nil {
		d = g.Latency.Delay()
	}
	if err := sleep(ctx, d); err != nil {
		return query.Result[T]{}, err
	}
	if g.Fail != nil {
		if err := g.Fail(opts); err != nil {
			return query.Result[T]{}, err
		}
	}
	records, err := g.Source.Load(ctx)
	if err != nil {
		return query.Result[T]{}, err
	}
	return query.Run(records, g.Schema, opts)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
