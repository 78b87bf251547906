package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"anonbox/internal/apperror"
	"anonbox/internal/metrics"
	"anonbox/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds the raw JSON accepted by importJSON.
const maxImportBytes = 10 << 20

func (h *Handler) adminDashboard(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"Title":     "管理後台",
		"Dashboard": h.services.Dashboard(),
	})
}

// @Summary      Delete user
// @Description  Removes the user and every message addressed to them.
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]interface{}  "deleted, messages_removed"
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		_ = c.Error(apperror.Validation("無效的編號", err))
		return
	}

	n, err := h.services.DeleteUser(id)
	metrics.RecordAdminAction("delete_user", err)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if h.log != nil {
		h.log.Infow("admin_user_deleted", "user_id", id, "messages_removed", n)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "messages_removed": n})
}

// @Summary      Delete message
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Message ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/admin/messages/{id} [delete]
func (h *Handler) deleteMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		_ = c.Error(apperror.Validation("無效的編號", err))
		return
	}

	err = h.services.DeleteMessage(id)
	metrics.RecordAdminAction("delete_message", err)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if h.log != nil {
		h.log.Infow("admin_message_deleted", "message_id", id)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// @Summary      Export raw records
// @Tags         admin
// @Produce      json
// @Param        type  path      string  true  "users | messages"
// @Success      200   {array}   object
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/json/{type} [get]
func (h *Handler) exportJSON(c *gin.Context) {
	data, err := h.services.Export(strings.ToLower(c.Param("type")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// @Summary      Replace raw records
// @Description  The body must be a JSON array of records; anything else is rejected and nothing is written.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        type  path      string  true  "users | messages"
// @Param        body  body      []object  true  "Replacement records"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/admin/json/{type} [post]
func (h *Handler) importJSON(c *gin.Context) {
	resource := strings.ToLower(c.Param("type"))
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		_ = c.Error(apperror.Validation("無法讀取資料", err))
		return
	}

	err = h.services.Import(resource, body)
	metrics.RecordAdminAction(importAction(resource), err)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if h.log != nil {
		h.log.Infow("admin_resource_replaced", "resource", resource, "bytes", len(body))
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// importAction keeps the metric label set closed whatever :type was requested.
func importAction(resource string) string {
	switch resource {
	case service.ResourceUsers, service.ResourceMessages:
		return "import_" + resource
	default:
		return "import_unknown"
	}
}
