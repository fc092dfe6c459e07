package opentelemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dbrequest/request"
	"dbrequest/request/ast"
)

const instrumentationName = "dbrequest/request/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() request.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next request.Handler) request.Handler {
		return func(ctx context.Context, qc *request.QueryContext) *request.QueryResult {
			// span name: dbrequest-COUNT
			spanCtx, span := m.Tracer.Start(ctx, fmt.Sprintf("dbrequest-%s", qc.Type))
			defer span.End()
			span.SetAttributes(attribute.String("type", qc.Type.String()))
			if qc.Query != nil {
				if f := fragmentAttr(qc.Query.Filter); f != "" {
					span.SetAttributes(attribute.String("filter", f))
				}
				if u := fragmentAttr(qc.Query.Update); u != "" {
					span.SetAttributes(attribute.String("update", u))
				}
			}
			span.SetAttributes(attribute.String("component", "dbrequest"))
			res := next(spanCtx, qc)
			if res != nil && res.Err != nil {
				span.RecordError(res.Err)
				span.SetStatus(codes.Error, res.Err.Error())
			}
			return res
		}
	}
}

func fragmentAttr(f ast.Fragment) string {
	if f == nil {
		return ""
	}
	data, err := ast.Marshal(f)
	if err != nil {
		return ""
	}
	return string(data)
}
