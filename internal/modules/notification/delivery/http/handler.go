package handler

import (
	"strconv"

	"github.com/Marco3041/linkedin-clone/internal/modules/notification/service"
	"github.com/Marco3041/linkedin-clone/pkg/response"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	notifications, err := h.service.GetNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.OK(c, notifications)
}
