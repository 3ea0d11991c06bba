package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performHandler(handler gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.Any("/test", handler)
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError_DomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"validation", shared.NewValidationError("bad input"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"invalid transition", shared.NewInvalidTransitionError("cannot deliver"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"unknown error", errors.New("database exploded"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	h := &BaseHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performHandler(func(c *gin.Context) {
				h.HandleError(c, tt.err)
			}, httptest.NewRequest("GET", "/test", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleError_WrappedDomainError(t *testing.T) {
	h := &BaseHandler{}
	wrapped := errorWrapper{shared.ErrNotFound}

	w := performHandler(func(c *gin.Context) {
		h.HandleError(c, wrapped)
	}, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

type errorWrapper struct{ inner error }

func (e errorWrapper) Error() string { return "wrapped: " + e.inner.Error() }
func (e errorWrapper) Unwrap() error { return e.inner }

func TestBaseHandler_HandleError_IncludesRequestID(t *testing.T) {
	h := &BaseHandler{}

	w := performHandler(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-abc")
		h.HandleError(c, shared.ErrNotFound)
	}, httptest.NewRequest("GET", "/test", nil))

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-abc", resp.Error.RequestID)
}

func TestBaseHandler_SuccessHelpers(t *testing.T) {
	h := &BaseHandler{}

	t.Run("success", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			h.Success(c, gin.H{"hello": "world"})
		}, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
	})

	t.Run("created", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			h.Created(c, gin.H{"id": uuid.New()})
		}, httptest.NewRequest("POST", "/test", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("no content", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			h.NoContent(c)
		}, httptest.NewRequest("DELETE", "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("success with meta", func(t *testing.T) {
		w := performHandler(func(c *gin.Context) {
			h.SuccessWithMeta(c, []string{"a", "b"}, 12, 1, 10)
		}, httptest.NewRequest("GET", "/test", nil))

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(12), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})
}

func TestGetActorID(t *testing.T) {
	t.Run("from development header", func(t *testing.T) {
		userID := uuid.New()
		var got uuid.UUID
		var err error

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-User-ID", userID.String())
		performHandler(func(c *gin.Context) {
			got, err = getActorID(c)
			c.Status(http.StatusOK)
		}, req)

		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("missing", func(t *testing.T) {
		var err error
		performHandler(func(c *gin.Context) {
			_, err = getActorID(c)
			c.Status(http.StatusOK)
		}, httptest.NewRequest("GET", "/test", nil))

		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		var err error
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		performHandler(func(c *gin.Context) {
			_, err = getActorID(c)
			c.Status(http.StatusOK)
		}, req)

		assert.Error(t, err)
	})
}
