package handlers

import (
	"errors"
	"net/http"

	"anonbox/internal/metrics"
	"anonbox/internal/service"
	"anonbox/internal/session"

	"github.com/gin-gonic/gin"
)

const msgSent = "訊息已送出"

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) messageBox(c *gin.Context) {
	u := c.MustGet(ctxUserKey).(session.UserIdentity)

	h.render(c, http.StatusOK, "message_box.html", gin.H{
		"Title":    "我的訊息箱",
		"Messages": h.services.Inbox(u.ID),
		"ShareURL": baseURL(c) + "/l/" + u.Link,
	})
}

func (h *Handler) anonymousForm(c *gin.Context) {
	link := c.Param("link")
	recipient, err := h.services.Recipient(link)
	if err != nil {
		h.failForm(c, err, "/")
		return
	}
	h.render(c, http.StatusOK, "anonymous_message.html", gin.H{
		"Title":    "匿名留言",
		"Username": recipient.Username,
		"Link":     recipient.Link,
	})
}

func (h *Handler) sendMessage(c *gin.Context) {
	link := c.Param("link")

	m, err := h.services.Send(link, c.PostForm("content"))
	metrics.RecordMessage(err)
	if err != nil {
		if h.log != nil {
			h.log.Infow("message_send_failed", "err", err)
		}
		back := "/l/" + link
		if errors.Is(err, service.ErrInvalidLink) {
			back = "/"
		}
		h.failForm(c, err, back)
		return
	}

	if h.log != nil {
		h.log.Infow("message_sent", "message_id", m.ID, "recipient_id", m.RecipientID)
	}
	h.flashRedirect(c, session.CategorySuccess, msgSent, "/l/"+link)
}

// baseURL is scheme://host of the request as the visitor sees it.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
