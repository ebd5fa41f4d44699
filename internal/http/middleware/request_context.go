package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/brokerage-backend/internal/platform/ctxutil"
)

// AttachRequestContext records request provenance (client IP, user agent)
// that the action ledger stores with each completion.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rd := &ctxutil.RequestData{}
		if prev := ctxutil.GetRequestData(ctx); prev != nil {
			*rd = *prev
		}
		rd.IPAddress = c.ClientIP()
		rd.UserAgent = c.Request.UserAgent()
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(ctx, rd))
		c.Next()
	}
}
