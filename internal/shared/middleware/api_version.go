package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"movies-backend/internal/shared"
	"movies-backend/internal/shared/response"
)

const (
	HeaderAPIVersion          = "api-version"
	HeaderAPISupportedVersion = "api-supported-versions"
	DefaultAPIVersion         = "1.0"
)

var supportedAPIVersions = []string{"1.0", "2.0"}

// APIVersion reads the requested version from the api-version header or query parameter.
// Missing → default version; unknown → 400.
func APIVersion() gin.HandlerFunc {
	supported := strings.Join(supportedAPIVersions, ", ")

	return func(c *gin.Context) {
		c.Header(HeaderAPISupportedVersion, supported)

		version := c.GetHeader(HeaderAPIVersion)
		if version == "" {
			version = c.Query(HeaderAPIVersion)
		}
		if version == "" {
			version = DefaultAPIVersion
		}

		if !isSupportedVersion(version) {
			response.ErrorWithDetails(c, 400, "UNSUPPORTED_API_VERSION",
				"The requested API version is not supported",
				gin.H{"requested": version, "supported": supportedAPIVersions})
			c.Abort()
			return
		}

		c.Set(shared.ContextKeyAPIVersion, version)
		c.Next()
	}
}

func isSupportedVersion(version string) bool {
	for _, v := range supportedAPIVersions {
		if v == version {
			return true
		}
	}
	return false
}
