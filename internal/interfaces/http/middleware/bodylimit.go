package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size.
// Custody photo uploads go through multipart forms, so the limit must
// leave room for the configured number of acknowledgement photos.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			requestID := getRequestIDFromContext(c)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(
					dto.ErrCodeRequestTooLarge,
					"Request body exceeds maximum allowed size",
					requestID,
				))
			return
		}

		// Wrap the body with a limited reader for streaming requests
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
