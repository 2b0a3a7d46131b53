package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})
}

func TestL_LazyInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	log = nil
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, log)
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()

	withID := WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestIDFrom(withID))
	assert.Equal(t, "", RequestIDFrom(ctx))
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	originalLog := log
	log = zap.New(core)
	defer func() { log = originalLog }()

	t.Run("WithRequestID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-abc")
		FromCtx(ctx).Info("hello")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "req-abc", logs[0].ContextMap()["request_id"])
	})

	t.Run("WithoutRequestID", func(t *testing.T) {
		FromCtx(context.Background()).Info("hello")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, ok := logs[0].ContextMap()["request_id"]
		assert.False(t, ok)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFrom(r.Context()))
	})
	handler := RequestIDMiddleware(next)

	t.Run("Generates ID when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("Preserves existing ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "given-id")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "given-id", w.Header().Get("X-Request-ID"))
	})
}

func TestLoggingMiddleware(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	originalLog := log
	log = zap.New(core)
	defer func() { log = originalLog }()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	LoggingMiddleware(next).ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	logs := observed.TakeAll()
	assert.Len(t, logs, 1)
	assert.Equal(t, "incoming request", logs[0].Message)
	assert.Equal(t, "/missing", logs[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusNotFound), logs[0].ContextMap()["status"])
}
