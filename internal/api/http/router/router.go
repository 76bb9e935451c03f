package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/passkeeper/passkeeper-server/internal/api/http/handler"
	"github.com/passkeeper/passkeeper-server/internal/api/http/middleware"
	"github.com/passkeeper/passkeeper-server/internal/logger"
	"github.com/passkeeper/passkeeper-server/internal/model"
)

// Router assembles the gin engine for all HTTP endpoints. It manages
// route registration and middleware configuration.
type Router struct {
	authService    handler.AuthService
	vaultService   handler.VaultService
	tokens         model.AccessTokenManager
	contextManager model.ContextManager
	corsOrigins    string
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService handler.AuthService,
	vaultService handler.VaultService,
	tokens model.AccessTokenManager,
	contextManager model.ContextManager,
	corsOrigins string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		vaultService:   vaultService,
		tokens:         tokens,
		contextManager: contextManager,
		corsOrigins:    corsOrigins,
		logger:         logger,
	}
}

// Register builds the engine with middleware, routes and the metrics
// endpoint.
func (r *Router) Register() *gin.Engine {
	engine := gin.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	logging := middleware.NewLogging(r.logger)
	metrics := middleware.NewMetrics(registry, "passkeeper")
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	engine.Use(gin.Recovery())
	engine.Use(requestid.New())
	engine.Use(logging.Handle)
	engine.Use(metrics.Handle)

	if corsMiddleware := corsFromOrigins(r.corsOrigins); corsMiddleware != nil {
		engine.Use(corsMiddleware)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)
	vaultHandler := handler.NewVault(r.vaultService, r.contextManager, r.logger)

	authGroup := engine.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/password", authenticate.Handle, authHandler.ChangePassword)
	}

	vaultGroup := engine.Group("/api/vault", authenticate.Handle)
	{
		vaultGroup.POST("/credentials", vaultHandler.Create)
		vaultGroup.GET("/credentials", vaultHandler.List)
		vaultGroup.GET("/credentials/:id", vaultHandler.Get)
		vaultGroup.PUT("/credentials/:id", vaultHandler.Update)
		vaultGroup.DELETE("/credentials/:id", vaultHandler.Delete)
		vaultGroup.GET("/credentials/:id/secret", vaultHandler.Reveal)
		vaultGroup.PUT("/credentials/:id/attachment", vaultHandler.UploadAttachment)
		vaultGroup.GET("/credentials/:id/attachment", vaultHandler.DownloadAttachment)
	}

	return engine
}

// corsFromOrigins builds a CORS middleware from a comma-separated origin
// list. An empty list disables CORS entirely; the API is designed for
// non-browser clients first.
func corsFromOrigins(originsStr string) gin.HandlerFunc {
	origins := parseOrigins(originsStr)
	if len(origins) == 0 {
		return nil
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{
			"X-Request-Id",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
