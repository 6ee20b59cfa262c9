package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the request identifier across service boundaries
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey stores the correlation ID in the gin context
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags every request with a UUID so log lines and archive
// entries produced on its behalf can be tied back together. A caller-supplied
// header is honored only when it parses as a UUID; anything else is replaced
// so malformed identifiers never reach the audit trail.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if _, err := uuid.Parse(correlationID); err != nil {
			correlationID = uuid.New().String()
		}

		c.Header(CorrelationIDHeader, correlationID)
		c.Set(CorrelationIDKey, correlationID)

		c.Next()
	}
}

// GetCorrelationID returns the request's correlation ID, or "" when the
// middleware did not run
func GetCorrelationID(c *gin.Context) string {
	id, exists := c.Get(CorrelationIDKey)
	if !exists {
		return ""
	}
	correlationID, ok := id.(string)
	if !ok {
		return ""
	}
	return correlationID
}
