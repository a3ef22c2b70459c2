package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var handlerTracer = otel.Tracer("release-league/internal/interfaces/httpapi")

// handlerSpan opens a child span for one handler. Requests without a server
// span, such as filtered health checks, get the no-op span from their
// context instead of a fresh root.
func handlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}

	attrs := make([]attribute.KeyValue, 0, 3)
	for _, name := range []string{"leagueID", "draftID", "season"} {
		if v := r.PathValue(name); v != "" {
			attrs = append(attrs, attribute.String("release_league."+name, v))
		}
	}
	return handlerTracer.Start(ctx, "httpapi.Handler."+op, trace.WithAttributes(attrs...))
}

// markSpanError flags the active span for responses the server is at fault
// for.
func markSpanError(ctx context.Context, status int, err error) {
	if status < http.StatusInternalServerError || err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, http.StatusText(status))
}
