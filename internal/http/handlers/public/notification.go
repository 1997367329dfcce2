package public

import (
	"strconv"

	"github.com/shopizen/internal/http/response"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"

	"github.com/gin-gonic/gin"
)

var notificationErrorRules = []mappedHandlerError{
	{Target: service.ErrNotificationNotFound, Code: response.CodeNotFound, Key: "error.notification_not_found"},
	{Target: service.ErrStorageWrite, Code: response.CodeUnavailable, Key: "error.storage_unavailable"},
}

// ListNotifications 获取个人通知及未读数
func (h *Handler) ListNotifications(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	key := models.IdentityKey(identity)
	items, err := ws.Notifications.List(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	unread := 0
	for _, item := range items {
		if !item.IsRead {
			unread++
		}
	}
	if items == nil {
		items = []models.Notification{}
	}
	response.Success(c, gin.H{"items": items, "unread": unread})
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := ws.Notifications.MarkRead(models.IdentityKey(identity), id); err != nil {
		respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// MarkAllNotificationsRead 全部标记已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	ws, ok := getWorkspace(c)
	if !ok {
		return
	}
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	if err := ws.Notifications.MarkAllRead(models.IdentityKey(identity)); err != nil {
		respondWithMappedError(c, err, notificationErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, gin.H{"updated": true})
}
