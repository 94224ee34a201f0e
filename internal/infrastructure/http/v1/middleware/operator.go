package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "transdoc/internal/core/context"
)

// HeaderOperator names the person or system issuing documents. It is recorded
// in the audit trail and carries no authorization.
const HeaderOperator = "X-Operator"

// Operator copies the X-Operator header into the request context.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if op := strings.TrimSpace(c.GetHeader(HeaderOperator)); op != "" {
			c.Request = c.Request.WithContext(appctx.WithOperator(c.Request.Context(), op))
			c.Set("operator", op)
		}
		c.Next()
	}
}
