package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/backend/internal/interfaces/http/dto"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("client-a"))
	assert.True(t, rl.Allow("client-a"))
	assert.False(t, rl.Allow("client-a"))

	// Independent keys have their own buckets
	assert.True(t, rl.Allow("client-b"))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("client-a"))
	assert.False(t, rl.Allow("client-a"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, rl.Allow("client-a"))
}

func TestRateLimiter_Remaining(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	assert.Equal(t, 3, rl.Remaining("client-a"))
	rl.Allow("client-a")
	assert.Equal(t, 2, rl.Remaining("client-a"))
}

func TestRateLimit_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewRateLimiter(1, time.Minute)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Error.Code)
}

func TestRateLimitByKey(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitByKey(NewRateLimiter(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-Api-Key")
	}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRequest("GET", "/ping", nil)
	first.Header.Set("X-Api-Key", "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, first)
	assert.Equal(t, http.StatusOK, w.Code)

	second := httptest.NewRequest("GET", "/ping", nil)
	second.Header.Set("X-Api-Key", "key-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, second)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	other := httptest.NewRequest("GET", "/ping", nil)
	other.Header.Set("X-Api-Key", "key-2")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}
