package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Customer identity headers. Authentication happens in the gateway in front
// of the API, which sets these after validating the session and strips them
// from client requests.
const (
	CustomerIDHeader    = "X-Customer-ID"
	CustomerEmailHeader = "X-Customer-Email"
)

const (
	customerIDKey    = "customer_id"
	customerEmailKey = "customer_email"
)

// Customer stores the authenticated customer in the gin context. Requests
// without a valid customer ID are anonymous.
func Customer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(CustomerIDHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil && id != uuid.Nil {
				c.Set(customerIDKey, id)
				c.Set(customerEmailKey, c.GetHeader(CustomerEmailHeader))
			}
		}
		c.Next()
	}
}

// GetCustomer returns the authenticated customer, or nil for anonymous requests
func GetCustomer(c *gin.Context) (*uuid.UUID, string) {
	v, ok := c.Get(customerIDKey)
	if !ok {
		return nil, ""
	}
	id := v.(uuid.UUID)
	return &id, c.GetString(customerEmailKey)
}
