package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationsRequest struct {
	Page            int    `json:"page"`
	Filter          string `json:"filter"`
	DeletedDocCount int    `json:"deletedDocCount"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	var req notificationsRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.notifications.ListNotifications(c.Request.Context(), services.ListNotificationsInput{
		UserID:          middleware.CurrentUser(c),
		Page:            req.Page,
		Filter:          req.Filter,
		DeletedDocCount: req.DeletedDocCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

func (h *NotificationHandler) Count(c *gin.Context) {
	var req notificationsRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.CountNotifications(c.Request.Context(), middleware.CurrentUser(c), req.Filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalDocs": n})
}

func (h *NotificationHandler) New(c *gin.Context) {
	ok, err := h.notifications.HasNewNotification(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_notification_available": ok})
}
