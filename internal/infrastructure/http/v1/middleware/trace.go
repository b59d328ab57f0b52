package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	appctx "millstock/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace assigns the request and trace ids and echoes them as response headers.
// Caller-supplied ids win; otherwise the trace id of an active span is reused.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := appctx.Trace{
			RequestID: c.GetHeader(HeaderRequestID),
			TraceID:   c.GetHeader(HeaderTraceID),
		}
		if t.RequestID == "" {
			t.RequestID = uuid.NewString()
		}
		if t.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				t.TraceID = sc.TraceID().String()
			} else {
				t.TraceID = t.RequestID
			}
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), t))

		c.Header(HeaderRequestID, t.RequestID)
		c.Header(HeaderTraceID, t.TraceID)

		c.Next()
	}
}
