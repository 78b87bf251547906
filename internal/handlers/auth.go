package handlers

import (
	"net/http"

	"anonbox/internal/metrics"
	"anonbox/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	msgRegistered  = "註冊成功"
	msgLoginFailed = "登入失敗"
)

// Single, shared credentials payload for register and both logins.
type authCredentials struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *Handler) bindCredentials(c *gin.Context) authCredentials {
	var input authCredentials
	if err := c.ShouldBind(&input); err != nil && h.log != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
	}
	return input
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "註冊"})
}

func (h *Handler) register(c *gin.Context) {
	input := h.bindCredentials(c)

	u, err := h.services.Register(input.Username, input.Password)
	metrics.RecordRegistration(err)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_up_failed", "username", input.Username, "err", err)
		}
		h.failForm(c, err, "/register")
		return
	}

	if h.log != nil {
		h.log.Infow("auth_signed_up", "user_id", u.ID)
	}
	h.flashRedirect(c, session.CategorySuccess, msgRegistered, "/login")
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "登入"})
}

func (h *Handler) login(c *gin.Context) {
	input := h.bindCredentials(c)

	identity, err := h.services.Login(input.Username, input.Password)
	metrics.RecordLogin("user", err)
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_sign_in_failed", "username", input.Username, "err", err)
		}
		h.failForm(c, err, "/login")
		return
	}

	if !h.establish(c, identity, "/login") {
		return
	}
	c.Redirect(http.StatusFound, "/message_box")
}

func (h *Handler) adminLoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_login.html", gin.H{"Title": "管理員登入"})
}

func (h *Handler) adminLogin(c *gin.Context) {
	input := h.bindCredentials(c)

	identity, err := h.services.LoginAdmin(input.Username, input.Password)
	metrics.RecordLogin("admin", err)
	if err != nil {
		if h.log != nil {
			h.log.Warnw("auth_admin_sign_in_failed", "client_ip", c.ClientIP())
		}
		h.failForm(c, err, "/admin/login")
		return
	}

	if !h.establish(c, identity, "/admin/login") {
		return
	}
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// establish starts the session for identity. On failure it flashes a
// generic notice and redirects to fallback.
func (h *Handler) establish(c *gin.Context, identity session.Identity, fallback string) bool {
	if _, err := h.sessions.Establish(c, identity); err != nil {
		if h.log != nil {
			h.log.Errorw("session_establish_failed", "err", err)
		}
		h.flashRedirect(c, session.CategoryError, msgLoginFailed, fallback)
		return false
	}
	return true
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil && h.log != nil {
		h.log.Warnw("session_destroy_failed", "err", err)
	}
	c.Redirect(http.StatusFound, "/")
}
