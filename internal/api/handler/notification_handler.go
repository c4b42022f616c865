package handler

import (
	"Duet/internal/api/dto"
	"Duet/internal/pkg/response"
	"Duet/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifSvc service.NotificationService
}

func NewNotificationHandler(notifSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc}
}

func (s *NotificationHandler) ListUnread(c *gin.Context) {
	userID := c.GetUint64("user_id")
	list, err := s.notifSvc.ListUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.MarkNotificationReadReq
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = s.notifSvc.MarkRead(c.Request.Context(), userID, req.NotificationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
