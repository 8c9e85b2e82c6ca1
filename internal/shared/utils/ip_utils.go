package utils

import (
	"net"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP returns the client address used as the rate-limit key.
//
// Forwarding headers (X-Forwarded-For, X-Real-IP) count only when the direct
// peer is one of the engine's trusted proxies; otherwise the peer address
// is used. See gin.Engine.SetTrustedProxies.
func ExtractClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); isValidIP(ip) {
		return ip
	}
	return "unknown"
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
