package mcpserver

import (
	"net/http"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// corsMiddleware enforces the CORS policy exactly: an allow-list
// of origins, wildcard only when explicitly enabled and not in
// production, credentials always disabled, and a 403 (not a silently
// header-less response) on a disallowed preflight. No general-purpose CORS
// middleware in the example pack implements this reject-with-403 shape, so
// this is hand-written rather than borrowed (see DESIGN.md).
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		wildcard := cfg.AllowWildcard && !cfg.Production
		isAllowed := wildcard || allowed[origin]

		if !isAllowed {
			// Disallowed cross-origin requests are dropped outright, not
			// just their preflight — S8 requires no handler runs.
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		if wildcard {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Mcp-Session-Id")
		c.Header("Access-Control-Allow-Credentials", "false")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
