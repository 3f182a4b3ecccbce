package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"device-inventory-backend/internal/model"
)

// APIKeyHeader carries the shared secret on mutating requests.
const APIKeyHeader = "X-API-KEY"

// APIKey guards a route with a static API key. An empty key turns the
// check off entirely.
func APIKey(key string) gin.HandlerFunc {
	if key == "" {
		return func(c *gin.Context) { c.Next() }
	}

	expected := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				ErrorCode: model.CodeUnauthorized,
				Message:   "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}
