package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techlogistics/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose body exceeds maxBytes. Dataset uploads
// are the largest payloads this service accepts; anything bigger is cut
// off before the multipart reader touches it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodePayloadTooLarge,
				"request body exceeds the maximum allowed size",
			))
			return
		}

		// Chunked requests carry no Content-Length; cap the stream too
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
