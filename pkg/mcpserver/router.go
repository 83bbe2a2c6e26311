package mcpserver

import (
	"net/http"

	"github.com/ejmockler/brutalist-mcp-go/pkg/config"
	"github.com/ejmockler/brutalist-mcp-go/pkg/session"
	"github.com/ejmockler/brutalist-mcp-go/pkg/sse"
	"github.com/ejmockler/brutalist-mcp-go/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewRouter wires the gin HTTP surface: POST /mcp for
// JSON-RPC tool calls (delegated to the SDK's own Streamable HTTP
// handler, which natively implements the SSE-keyed-by-Mcp-Session-Id
// transport), GET /mcp for this system's own per-analysis-session
// progress stream, and GET /health.
func NewRouter(server *mcp.Server, sessions *session.Manager, sessionLimits config.SessionLimits, cors config.CORSConfig, maxBodyBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cors))
	router.Use(bodyLimitMiddleware(maxBodyBytes))

	mcpHTTPHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	sseHandler := sse.NewHandler(sessions, sessionLimits)

	router.POST("/mcp", gin.WrapH(mcpHTTPHandler))
	router.GET("/mcp", func(c *gin.Context) {
		sessionID := c.GetHeader("Mcp-Session-Id")
		if sessionID == "" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		sseHandler.ServeSession(c.Writer, c.Request, sessionID)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"transport": "http-streaming",
			"version":   version.Full(),
		})
	})

	return router
}

// bodyLimitMiddleware caps request bodies at maxBytes (10 MiB by
// default), mirroring the cap any production gin deployment needs
// ahead of JSON binding.
func bodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
