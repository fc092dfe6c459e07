package opentelemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"dbrequest/request"
	"dbrequest/request/backend/memory"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	testCases := []struct {
		name      string
		call      func(d *request.Driver) error
		wantName  string
		wantAttrs []attribute.KeyValue
		wantErr   bool
	}{
		{
			name: "count",
			call: func(d *request.Driver) error {
				_, err := d.CountElements(context.Background(), request.Where(request.C("foo").Eq("bar")))
				return err
			},
			wantName: "dbrequest-COUNT",
			wantAttrs: []attribute.KeyValue{
				attribute.String("type", "COUNT"),
				attribute.String("filter", `[{"name":"filter","val":[{"name":"prop","val":"foo"},{"name":"cond","val":"=="},{"name":"val","val":"bar"}]}]`),
				attribute.String("component", "dbrequest"),
			},
		},
		{
			name: "create",
			call: func(d *request.Driver) error {
				_, err := d.PutElement(context.Background(), request.Update(request.Set("foo", "bar")))
				return err
			},
			wantName: "dbrequest-CREATE",
			wantAttrs: []attribute.KeyValue{
				attribute.String("type", "CREATE"),
				attribute.String("update", `[[{"name":"prop","val":"foo"},{"name":"assign","val":{"name":"val","val":"bar"}}]]`),
				attribute.String("component", "dbrequest"),
			},
		},
		{
			name: "error",
			call: func(d *request.Driver) error {
				_, err := d.CountElements(context.Background(), request.Where(request.C("i").Eq(request.E("i").Div(0))))
				return err
			},
			wantName: "dbrequest-COUNT",
			wantErr:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			m := MiddlewareBuilder{Tracer: tp.Tracer(instrumentationName)}
			d := request.NewDriver(
				memory.New(memory.WithRecords(request.Record{"i": 1})),
				request.DriverWithMiddleware(m.Build()),
			)

			err := tc.call(d)
			assert.Equal(t, tc.wantErr, err != nil)

			spans := sr.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, tc.wantName, span.Name())
			if tc.wantErr {
				assert.Equal(t, codes.Error, span.Status().Code)
				require.Len(t, span.Events(), 1)
				assert.Equal(t, "exception", span.Events()[0].Name)
				return
			}
			assert.Equal(t, tc.wantAttrs, span.Attributes())
		})
	}
}
