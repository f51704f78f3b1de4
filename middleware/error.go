package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// AppHandler is an http.HandlerFunc that may return an error instead of
// writing its own failure response. ErrorHandler adapts it for mux.
type AppHandler func(http.ResponseWriter, *http.Request) error

// AppError carries the status and message to present to the client. Err is
// the underlying cause and is logged, never sent over the wire.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	if !rec.wroteHeader {
		rec.status = statusCode
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(statusCode)
}

// ErrorHandler turns a returned error into a JSON error response and
// recovers panics. Once the handler has written a header the body is left
// alone and the error is only logged.
func ErrorHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic recovered: method=%s path=%s panic=%v", r.Method, r.URL.Path, recovered)
				if !rec.wroteHeader {
					writeJSONError(rec, http.StatusInternalServerError, "Internal server error")
				}
			}
		}()

		err := handler(rec, r)
		if err == nil {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var appErr *AppError
		if errors.As(err, &appErr) {
			status = appErr.Status
			message = appErr.Message
		}

		if status >= http.StatusInternalServerError {
			log.Printf("request failed: method=%s path=%s status=%d err=%v", r.Method, r.URL.Path, status, err)
		}
		if rec.wroteHeader {
			return
		}
		writeJSONError(rec, status, message)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
