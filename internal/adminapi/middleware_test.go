package adminapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware_GeneratesWhenAbsent(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	RequestIDMiddleware(next).ServeHTTP(rr, req)

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rr.Header().Get(requestIDHeader))
}

func TestRequestIDMiddleware_PreservesIncoming(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	RequestIDMiddleware(next).ServeHTTP(rr, req)

	assert.Equal(t, "fixed-id", captured)
	assert.Equal(t, "fixed-id", rr.Header().Get(requestIDHeader))
}

func TestGetRequestID_AbsentReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	handler := LoggingMiddleware(logger)(next)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/servers/s1/state", nil)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
}
