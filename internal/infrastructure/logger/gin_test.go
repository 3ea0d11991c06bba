package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T, level zapcore.Level) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(level)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	engine.Use(Recovery(log))
	engine.Use(GinMiddleware(log))
	return engine, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs one access line with request fields", func(t *testing.T) {
		engine, logs := newObservedRouter(t, zapcore.InfoLevel)
		engine.GET("/orders", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?page=2", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "request completed", entries[0].Message)
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/orders", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "page=2", fields["query"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		engine, logs := newObservedRouter(t, zapcore.InfoLevel)
		engine.GET("/orders/:id", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/missing", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("server errors log at error", func(t *testing.T) {
		engine, logs := newObservedRouter(t, zapcore.InfoLevel)
		engine.GET("/boom", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("stores a request-scoped logger in the context", func(t *testing.T) {
		engine, _ := newObservedRouter(t, zapcore.InfoLevel)
		var inHandler *zap.Logger
		engine.GET("/orders", func(c *gin.Context) {
			inHandler = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

		assert.NotNil(t, inHandler)
	})
}

func TestRecovery(t *testing.T) {
	engine, logs := newObservedRouter(t, zapcore.ErrorLevel)
	engine.GET("/panic", func(c *gin.Context) {
		panic("ledger fold exploded")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "/panic", fields["path"])
}

func TestGetGinLogger_Fallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// No middleware ran; the fallback must be safe to use.
	log := GetGinLogger(c)
	require.NotNil(t, log)
	log.Info("noop")
}
