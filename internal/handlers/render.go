package handlers

import (
	"net/http"
	"strings"

	"anonbox/internal/apperror"
	"anonbox/internal/session"

	"github.com/gin-gonic/gin"
)

const msgInternal = "伺服器發生錯誤，請稍後再試"

// render drains pending flash notices into the page along with the
// current principal.
func (h *Handler) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	flashes, err := h.sessions.Drain(c)
	if err != nil && h.log != nil {
		h.log.Warnw("flash_drain_failed", "err", err)
	}
	data["Flashes"] = flashes
	h.renderPage(c, code, name, data)
}

// renderPage renders without touching the flash queue.
func (h *Handler) renderPage(c *gin.Context, code int, name string, data gin.H) {
	s := h.sessions.Current(c)
	if u, ok := s.User(); ok {
		data["User"] = &u
	}
	if a, ok := s.Admin(); ok {
		data["Admin"] = &a
	}
	c.HTML(code, name, data)
}

// flashRedirect queues a notice and redirects. A notice that cannot be
// saved is logged and the redirect still happens.
func (h *Handler) flashRedirect(c *gin.Context, cat session.Category, text, location string) {
	if err := h.sessions.Flash(c, cat, text); err != nil && h.log != nil {
		h.log.Warnw("flash_save_failed", "err", err)
	}
	c.Redirect(http.StatusFound, location)
}

// failForm handles a failed form submission. Client errors become a flash
// notice and a redirect; anything else goes to the error boundary.
func (h *Handler) failForm(c *gin.Context, err error, location string) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.StatusCode() >= http.StatusInternalServerError {
		_ = c.Error(err)
		return
	}
	h.flashRedirect(c, session.CategoryError, appErr.Message, location)
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// respondError writes err as JSON or as the error page and aborts.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	msg := msgInternal
	if appErr, ok := apperror.As(err); ok && status < http.StatusInternalServerError {
		msg = appErr.Message
	}

	if h.log != nil {
		if status >= http.StatusInternalServerError {
			h.log.Errorw("request_failed", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "err", err)
		} else {
			h.log.Debugw("request_rejected", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "err", err)
		}
	}

	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
		return
	}
	// pending notices stay queued for the next regular page
	h.renderPage(c, status, "error.html", gin.H{"Title": msg, "Status": status, "Message": msg})
	c.Abort()
}
