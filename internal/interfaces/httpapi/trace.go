package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("daily-pick/internal/interfaces/httpapi")

// startHandlerSpan opens httpapi.Handler.<name> below the request span and tags
// it with the route's group code, player id or game id. Requests RequestTracing skips
// have no parent, so they get the non-recording span already in the context.
func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, handlerSpanPrefix+name, trace.WithAttributes(routeAttributes(r)...))
}

func routeAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if code := r.PathValue("code"); code != "" {
		attrs = append(attrs, attribute.String("group.code", code))
	}
	if playerID := r.PathValue("playerID"); playerID != "" {
		attrs = append(attrs, attribute.String("player.id", playerID))
	}
	if gameID := r.PathValue("gameID"); gameID != "" {
		attrs = append(attrs, attribute.String("game.id", gameID))
	}
	if date := r.URL.Query().Get("date"); date != "" {
		attrs = append(attrs, attribute.String("pick.date", date))
	}
	return attrs
}
