package context

import "context"

// Trace identifies one request across logs and responses.
type Trace struct {
	RequestID string
	TraceID   string
}

type traceKey struct{}

func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// GetTrace returns the request trace; ok is false outside a request.
func GetTrace(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}

// RequestID returns the request id or "".
func RequestID(ctx context.Context) string {
	t, _ := GetTrace(ctx)
	return t.RequestID
}
