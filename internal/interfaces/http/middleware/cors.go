// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/retail-backend/internal/config"
)

// CORS returns the cross-origin middleware. The allowed origin list comes
// from config; preflight requests are answered here and never reach the
// handlers.
func CORS(cfg *config.Config) gin.HandlerFunc {
	allowedMethods := strings.Join(cfg.Security.CORSAllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.Security.CORSAllowedHeaders, ", ")

	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); originAllowed(cfg.Security.CORSAllowedOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", allowedMethods)
		c.Header("Access-Control-Allow-Headers", allowedHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// originAllowed matches an origin against the configured list. A leading
// "*." entry matches any subdomain of its suffix; a bare "*" matches all.
func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, candidate := range allowed {
		switch {
		case candidate == "*" || candidate == origin:
			return true
		case strings.HasPrefix(candidate, "*."):
			if strings.HasSuffix(origin, strings.TrimPrefix(candidate, "*.")) {
				return true
			}
		}
	}
	return false
}
