package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/backend/internal/interfaces/http/dto"
)

type createThingRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Kind     string `json:"kind" binding:"required,oneof=BRANCH WORKSHOP FACTORY"`
	Quantity int    `json:"quantity" binding:"min=1"`
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	r := gin.New()
	r.Use(RequestID())
	r.POST("/things", func(c *gin.Context) {
		var req createThingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	body := bytes.NewBufferString(`{"kind":"CASTLE","quantity":0}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/things", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)

	fields := make(map[string]string)
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "Must be one of: BRANCH WORKSHOP FACTORY", fields["kind"])
	assert.Equal(t, "Must be at least 1", fields["quantity"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
