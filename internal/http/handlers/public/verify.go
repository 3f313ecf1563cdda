package public

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/http/handlers/shared"
	"github.com/khxzi/passport/internal/service"

	"github.com/gin-gonic/gin"
)

// SendCodeRequest 发送验证码请求
type SendCodeRequest struct {
	DiscordID      string                       `json:"discordId"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// SendCode 发送一次性验证码
func (h *Handler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DiscordID) == "" {
		respondRawError(c, http.StatusBadRequest, "Missing Discord ID", nil)
		return
	}

	if !h.verifyCaptcha(c, constants.CaptchaSceneVerifySend, req.CaptchaPayload) {
		return
	}

	if err := h.VerifyService.IssueCode(req.DiscordID); err != nil {
		var cooldown *service.CooldownError
		switch {
		case errors.As(err, &cooldown):
			respondRawError(c, http.StatusTooManyRequests,
				fmt.Sprintf("Please wait %ds before resending.", cooldown.RemainingSeconds), nil)
		case errors.Is(err, service.ErrMissingDiscordID):
			respondRawError(c, http.StatusBadRequest, "Missing Discord ID", nil)
		case errors.Is(err, service.ErrCodeDelivery):
			respondRawError(c, http.StatusInternalServerError, "Could not send DM. Please open your DMs.", err)
		default:
			respondRawError(c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckCodeRequest 校验验证码请求
type CheckCodeRequest struct {
	DiscordID string `json:"discordId"`
	Code      string `json:"code"`
}

// CheckCode 校验一次性验证码
func (h *Handler) CheckCode(c *gin.Context) {
	var req CheckCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.DiscordID) == "" || strings.TrimSpace(req.Code) == "" {
		respondRawError(c, http.StatusBadRequest, "Missing data", nil)
		return
	}

	if err := h.VerifyService.CheckCode(req.DiscordID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrCodeNotFound):
			respondRawError(c, http.StatusBadRequest, "No verification code found. Please request a new one.", nil)
		case errors.Is(err, service.ErrCodeExpired):
			respondRawError(c, http.StatusBadRequest, "Code expired. Please request a new one.", nil)
		case errors.Is(err, service.ErrCodeMismatch):
			respondRawError(c, http.StatusBadRequest, "Invalid code.", nil)
		case errors.Is(err, service.ErrMissingDiscordID):
			respondRawError(c, http.StatusBadRequest, "Missing data", nil)
		default:
			respondRawError(c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CreateRequestRequest 人工审核申请请求
type CreateRequestRequest struct {
	DiscordID      string                       `json:"discordId"`
	Method         string                       `json:"method"`
	Notes          string                       `json:"notes"`
	Attachments    []string                     `json:"attachments"`
	CaptchaPayload shared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// CreateRequest 提交人工审核申请
func (h *Handler) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DiscordID) == "" {
		respondRawError(c, http.StatusBadRequest, "Missing Discord ID", nil)
		return
	}

	if !h.verifyCaptcha(c, constants.CaptchaSceneVerifyRequest, req.CaptchaPayload) {
		return
	}

	request, err := h.RequestService.CreateRequest(req.DiscordID, req.Method, req.Notes, req.Attachments)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingDiscordID):
			respondRawError(c, http.StatusBadRequest, "Missing Discord ID", nil)
		default:
			respondRawError(c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": request.RequestID})
}

// GetRequestStatus 查询申请状态
func (h *Handler) GetRequestStatus(c *gin.Context) {
	request, err := h.RequestService.GetStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			respondRawError(c, http.StatusNotFound, "Request not found", nil)
			return
		}
		respondRawError(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	resp := gin.H{
		"id":        request.RequestID,
		"status":    request.Status,
		"createdAt": request.CreatedAt,
	}
	if request.ReviewerNote != "" {
		resp["reviewerNote"] = request.ReviewerNote
	}
	c.JSON(http.StatusOK, resp)
}

// UploadAttachment 上传审核附件，返回存储文件名
func (h *Handler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondRawError(c, http.StatusBadRequest, "Missing file", nil)
		return
	}
	filename, err := h.UploadService.SaveFile(file)
	if err != nil {
		respondRawError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filename": filename})
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload shared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	err := h.CaptchaService.Verify(scene, payload.ToServicePayload(), c.ClientIP())
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, service.ErrCaptchaRequired):
		respondRawError(c, http.StatusBadRequest, "Captcha required.", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		respondRawError(c, http.StatusBadRequest, "Captcha verification failed.", nil)
	default:
		respondRawError(c, http.StatusInternalServerError, "Internal Server Error", err)
	}
	return false
}
