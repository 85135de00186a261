package project

import (
	"errors"
	"time"

	"freelance-marketplace/internal/global/attachment"
	"freelance-marketplace/internal/global/jwt"
	"freelance-marketplace/internal/global/response"

	"github.com/gin-gonic/gin"
)

type PresignReq struct {
	Owner       attachment.Owner `json:"owner" binding:"required,oneof=project proposal"`
	Filename    string           `json:"filename" binding:"required,max=255"`
	ContentType string           `json:"content_type" binding:"max=100"`
	ExpiresIn   int64            `json:"expires_in" binding:"gte=0"` // 秒，0 取默认
}

// PresignAttachment 返回直传对象存储的预签名地址，上传后把 file_url 写入项目或投标的 attachments
func PresignAttachment(c *gin.Context) {
	payload, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
		return
	}
	var req PresignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	up, err := bucket.PresignUpload(c.Request.Context(), attachment.UploadRequest{
		Owner:       req.Owner,
		UserID:      payload.UserID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Expiry:      time.Duration(req.ExpiresIn) * time.Second,
	})
	if err != nil {
		if errors.Is(err, attachment.ErrInvalidRequest) {
			response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
			return
		}
		log.Error("生成预签名地址失败", "error", err, "user_id", payload.UserID)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}
	response.Success(c, up)
}
