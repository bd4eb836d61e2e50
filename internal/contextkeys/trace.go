package contextkeys

import "context"

type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// ContextWithTraceID помещает trace_id в контекст
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id из контекста.
// Возвращает пустую строку, если trace_id не найден
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

type visitIDKeyType struct{}

var visitIDKey = visitIDKeyType{}

// ContextWithVisitID помечает контекст идентификатором визита.
func ContextWithVisitID(ctx context.Context, visitID string) context.Context {
	return context.WithValue(ctx, visitIDKey, visitID)
}

func VisitIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(visitIDKey).(string); ok {
		return id
	}
	return ""
}
