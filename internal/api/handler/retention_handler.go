package handler

import (
	"Duet/internal/job"
	"Duet/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type RetentionHandler struct {
	retentionJob *job.RetentionJob
}

func NewRetentionHandler(retentionJob *job.RetentionJob) *RetentionHandler {
	return &RetentionHandler{retentionJob: retentionJob}
}

// RunNow 手动触发一轮清扫，返回各步骤处理量
func (s *RetentionHandler) RunNow(c *gin.Context) {
	result, err := s.retentionJob.RunNow(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
