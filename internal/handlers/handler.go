package handlers

import (
	"net/http"

	_ "anonbox/docs"
	"anonbox/internal/apperror"
	"anonbox/internal/logger"
	"anonbox/internal/metrics"
	"anonbox/internal/service"
	"anonbox/internal/session"
	"anonbox/web"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services, sessions and logging.
type Handler struct {
	services *service.Service
	sessions *session.Manager
	limiter  *RateLimiter
	log      *logger.Logger

	trustedProxies []string
}

// NewHandler constructs a new HTTP handler with dependencies. A nil limiter
// disables rate limiting.
func NewHandler(services *service.Service, sessions *session.Manager, limiter *RateLimiter, log *logger.Logger) *Handler {
	return &Handler{services: services, sessions: sessions, limiter: limiter, log: log}
}

// TrustProxies sets the proxies whose X-Forwarded-For header is honoured.
// Call before InitRoutes.
func (h *Handler) TrustProxies(proxies []string) {
	h.trustedProxies = proxies
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(h.trustedProxies); err != nil {
		if h.log != nil {
			h.log.Warnw("trusted_proxies_rejected", "proxies", h.trustedProxies, "err", err)
		}
		_ = router.SetTrustedProxies(nil)
	}
	router.SetHTMLTemplate(web.MustTemplates())
	router.Use(
		h.requestLogger,
		gin.CustomRecovery(h.recoverPanic),
		metrics.Middleware(),
		h.sessions.Middleware(),
		h.errorBoundary,
	)
	router.NoRoute(h.notFound)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h.registerPageRoutes(router)
	h.registerAuthRoutes(router)
	h.registerMessageRoutes(router)
	h.registerAdminRoutes(router)

	return router
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	r.GET("/", h.index)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	r.GET("/register", h.registerPage)
	r.POST("/register", h.register)
	r.GET("/login", h.loginPage)
	r.POST("/login", h.rateLimit, h.login)
	r.GET("/logout", h.logout)
}

func (h *Handler) registerMessageRoutes(r *gin.Engine) {
	r.GET("/message_box", h.requireUser, h.messageBox)

	link := r.Group("/l")
	{
		link.GET("/:link", h.anonymousForm)
		link.POST("/:link", h.rateLimit, h.sendMessage)
	}
}

func (h *Handler) registerAdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	{
		admin.GET("/login", h.adminLoginPage)
		admin.POST("/login", h.rateLimit, h.adminLogin)
		admin.GET("/dashboard", h.requireAdmin, h.adminDashboard)
	}

	api := r.Group("/api/admin", h.requireAdmin)
	{
		api.DELETE("/users/:id", h.deleteUser)
		api.DELETE("/messages/:id", h.deleteMessage)
		api.GET("/json/:type", h.exportJSON)
		api.POST("/json/:type", h.importJSON)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handler) notFound(c *gin.Context) {
	h.respondError(c, apperror.NotFound("找不到頁面", nil))
}
