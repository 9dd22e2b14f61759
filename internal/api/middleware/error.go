package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers from panics and answers with the uniform error
// envelope instead of an empty 500.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		msg := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			msg = s
		} else if err, ok := recovered.(error); ok {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": msg,
			},
		})
		c.Abort()
	})
}
