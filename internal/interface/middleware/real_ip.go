package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client address under "real_ip". It prefers
// CF-Connecting-IP, then X-Real-IP, then the left-most X-Forwarded-For
// entry, then c.ClientIP(). Only mount it behind a proxy that overwrites
// these headers.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := firstIP(
			c.GetHeader("CF-Connecting-IP"),
			c.GetHeader("X-Real-IP"),
			leftMost(c.GetHeader("X-Forwarded-For")),
		)
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func leftMost(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return first
}

func firstIP(candidates ...string) string {
	for _, s := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
