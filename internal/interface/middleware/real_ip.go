package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client IP under "real_ip". Proxy headers
// (CF-Connecting-IP, then the left-most X-Forwarded-For) are honoured only
// when trustProxy is set; otherwise gin's ClientIP is used.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", clientIP(c, trustProxy))
		c.Next()
	}
}

func clientIP(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if ip := net.ParseIP(strings.TrimSpace(c.GetHeader("CF-Connecting-IP"))); ip != nil {
			return ip.String()
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	return c.ClientIP()
}
