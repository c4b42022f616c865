package handler

import (
	"Duet/internal/api/dto"
	"Duet/internal/pkg/response"
	"Duet/internal/service"

	"github.com/gin-gonic/gin"
)

type PairingHandler struct {
	pairingSvc service.PairingService
}

func NewPairingHandler(pairingSvc service.PairingService) *PairingHandler {
	return &PairingHandler{pairingSvc: pairingSvc}
}

func (s *PairingHandler) GenerateCode(c *gin.Context) {
	userID := c.GetUint64("user_id")
	codeDTO, err := s.pairingSvc.GenerateCode(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, codeDTO)
}

func (s *PairingHandler) RedeemCode(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.RedeemCodeReq
	err := c.ShouldBind(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.pairingSvc.RedeemCode(c.Request.Context(), userID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PairingHandler) Unpair(c *gin.Context) {
	userID := c.GetUint64("user_id")
	if err := s.pairingSvc.Unpair(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PairingHandler) Status(c *gin.Context) {
	userID := c.GetUint64("user_id")
	status, err := s.pairingSvc.Status(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}
