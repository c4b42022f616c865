package handler

import (
	"Duet/internal/api/dto"
	"Duet/internal/pkg/response"
	"Duet/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

func (s *MessageHandler) Send(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.SendMessageReq
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg, err := s.messageSvc.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *MessageHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	msgs, err := s.messageSvc.ListMessages(c.Request.Context(), userID, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msgs)
}

func (s *MessageHandler) MarkAsRead(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.MarkAsReadReq
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	count, err := s.messageSvc.MarkAsRead(c.Request.Context(), userID, req.ConversationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

func (s *MessageHandler) Delete(c *gin.Context) {
	userID := c.GetUint64("user_id")
	messageID, err := strconv.ParseUint(c.Param("message_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err = s.messageSvc.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")
	count, err := s.messageSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}
