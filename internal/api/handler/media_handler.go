package handler

import (
	"Duet/internal/pkg/response"
	"Duet/internal/service"
	"io"
	log "log/slog"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaSvc service.MediaService
}

func NewMediaHandler(mediaSvc service.MediaService) *MediaHandler {
	return &MediaHandler{mediaSvc: mediaSvc}
}

// Upload multipart 上传附件，conversation_id 走表单字段
func (s *MediaHandler) Upload(c *gin.Context) {
	userID := c.GetUint64("user_id")

	convID, err := strconv.ParseUint(c.PostForm("conversation_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil || file == nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileDTO, err := s.mediaSvc.Upload(c.Request.Context(), userID, convID, file.Filename, contentType, file.Size, reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, fileDTO)
}

func (s *MediaHandler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	files, err := s.mediaSvc.ListFiles(c.Request.Context(), userID, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, files)
}

// Download 以流式响应返回附件内容，文件名还原为原始名
func (s *MediaHandler) Download(c *gin.Context) {
	userID := c.GetUint64("user_id")
	fileID, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	file, reader, err := s.mediaSvc.OpenFile(c.Request.Context(), userID, fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	c.Header("Content-Disposition", `attachment; filename="`+url.PathEscape(file.OriginalName)+`"`)
	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Length", strconv.FormatInt(file.FileSize, 10))
	if _, err = io.Copy(c.Writer, reader); err != nil {
		log.WarnContext(c, "附件下载中断", "file", fileID, "err", err)
	}
}

func (s *MediaHandler) Delete(c *gin.Context) {
	userID := c.GetUint64("user_id")
	fileID, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err = s.mediaSvc.DeleteFile(c.Request.Context(), userID, fileID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
