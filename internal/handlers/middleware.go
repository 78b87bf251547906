package handlers

import (
	"fmt"
	"net/http"
	"time"

	"anonbox/internal/apperror"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "user"

// requireUser lets only logged-in users through; everyone else, including
// the administrator, is sent to the login page. A session whose user has
// since been deleted is destroyed.
func (h *Handler) requireUser(c *gin.Context) {
	u, ok := h.sessions.Current(c).User()
	if ok {
		if u, ok = h.services.Resolve(u); !ok {
			if err := h.sessions.Destroy(c); err != nil && h.log != nil {
				h.log.Warnw("session_destroy_failed", "err", err)
			}
		}
	}
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Set(ctxUserKey, u)
	c.Next()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	if _, ok := h.sessions.Current(c).Admin(); !ok {
		h.respondError(c, apperror.Forbidden("需要管理員權限", nil))
		return
	}
	c.Next()
}

// errorBoundary turns the last error attached by a handler into a response.
func (h *Handler) errorBoundary(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	h.respondError(c, c.Errors.Last().Err)
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}
	h.respondError(c, apperror.Internal("panic", err))
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"client_ip", c.ClientIP(),
	)
}
