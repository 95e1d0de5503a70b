package middleware

import (
	"buyback-pos/internal/backend"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// RequestID tags the request, and every backend call made for it, with one
// id. An id sent by a proxy in front of us is reused.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(backend.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
