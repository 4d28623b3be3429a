package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"leadconsole/internal/model"
	"leadconsole/internal/query"
)

type sliceSource[T any] []T

func (s sliceSource[T]) Load(context.Context) ([]T, error) { return s, nil }

func testLeads() sliceSource[model.Lead] {
	return sliceSource[model.Lead]{
		{ID: 1, Name: "Sarah Chen", Score: 925, Status: model.LeadStatusNew},
		{ID: 2, Name: "Marcus Johnson", Score: 880, Status: model.LeadStatusContacted},
		{ID: 3, Name: "Emily Rodriguez", Score: 745, Status: model.LeadStatusQualified},
	}
}

func TestJitter_StaysInRange(t *testing.T) {
	j := Jitter{Min: 500 * time.Millisecond, Max: 1000 * time.Millisecond}
	for i := 0; i < 200; i++ {
		d := j.Delay()
		require.GreaterOrEqual(t, d, j.Min)
		require.LessOrEqual(t, d, j.Max)
	}
	assert.Equal(t, 5*time.Millisecond, Jitter{Min: 5 * time.Millisecond}.Delay())
	assert.Equal(t, 20*time.Millisecond, Fixed(20*time.Millisecond).Delay())
}

func TestGateway_Query_RunsEngineAfterDelay(t *testing.T) {
	g := New("leads", testLeads(), query.LeadSchema, Fixed(30*time.Millisecond))

	start := time.Now()
	res, err := g.Query(context.Background(), query.Options{
		Sorting:    map[string]query.Direction{"score": query.Asc},
		Pagination: &query.Pagination{Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Items[0].ID)
	assert.Equal(t, 2, res.Items[1].ID)
}

func TestGateway_Query_ContextCancel(t *testing.T) {
	g := New("leads", testLeads(), query.LeadSchema, Fixed(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Query(ctx, query.Options{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGateway_Query_FailureInjectorAndSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	boom := errors.New("backend unavailable")
	g := New("leads", testLeads(), query.LeadSchema, Fixed(0))
	g.Tracer = tp.Tracer("test")
	g.Fail = func(query.Options) error { return boom }

	_, err := g.Query(context.Background(), query.Options{Filters: map[string]string{"name": "sarah"}})
	require.ErrorIs(t, err, boom)

	g.Fail = nil
	res, err := g.Query(context.Background(), query.Options{Filters: map[string]string{"name": "sarah"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "gateway.query", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
	attrs := map[string]any{}
	for _, kv := range spans[1].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "leads", attrs["data_key"])
	assert.Equal(t, int64(1), attrs["total"])
}

func TestGateway_Query_InvalidPaginationIsAnError(t *testing.T) {
	g := New("leads", testLeads(), query.LeadSchema, Fixed(0))
	_, err := g.Query(context.Background(), query.Options{Pagination: &query.Pagination{Page: 1}})
	require.ErrorIs(t, err, query.ErrInvalidLimit)
}

func TestResponse_MarshalJSON_UsesDataKey(t *testing.T) {
	b, err := json.Marshal(NewResponse("opportunities", query.Result[model.Opportunity]{Total: 0}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"opportunities":[],"total":0}`, string(b))

	b, err = json.Marshal(NewResponse("leads", query.Result[model.Lead]{Items: []model.Lead{{ID: 7, Name: "x", Status: "qualified"}}, Total: 12}))
	require.NoError(t, err)
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Contains(t, got, "leads")
	assert.JSONEq(t, `12`, string(got["total"]))
}
