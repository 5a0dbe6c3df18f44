package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/services"
)

func ListNotificationsHandler(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit", 20)
		if !ok {
			return
		}
		list, err := ns.List(c.Request.Context(), actorOf(c), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(list, ""))
	}
}

func UnreadCountHandler(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := ns.UnreadCount(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"unread": n}, ""))
	}
}

func MarkNotificationReadHandler(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := ns.MarkRead(c.Request.Context(), actorOf(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Notification marked as read"))
	}
}

func MarkAllNotificationsReadHandler(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := ns.MarkAllRead(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"updated": n}, "All notifications marked as read"))
	}
}

type bulkNotificationRequest struct {
	UserIDs []string `json:"user_ids" binding:"required,min=1"`
	Title   string   `json:"title" binding:"required"`
	Message string   `json:"message" binding:"required"`
	Link    string   `json:"link"`
}

// SendBulkHandler queues an operator broadcast. Delivery happens in the outbox worker.
func SendBulkHandler(ns *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		entry, err := ns.SendBulk(c.Request.Context(), actorOf(c), req.UserIDs, req.Title, req.Message, req.Link)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, helpers.SuccessResponse(entry, "Notifications queued"))
	}
}
