package middleware

import (
	"log"
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger emits one line per request with the active trace and span
// IDs so log lines can be joined against exported traces.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		spanContext := trace.SpanFromContext(r.Context()).SpanContext()

		log.Printf(
			"request method=%s path=%s status=%d bytes=%d duration=%s trace_id=%s span_id=%s",
			r.Method,
			r.URL.Path,
			metrics.Code,
			metrics.Written,
			metrics.Duration,
			spanContext.TraceID(),
			spanContext.SpanID(),
		)
	})
}
