package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/khxzi/passport/internal/http/response"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/repository"
	"github.com/khxzi/passport/internal/service"

	"github.com/gin-gonic/gin"
)

// RequestView 申请详情响应，附件列表从 JSON 字段展开
type RequestView struct {
	*models.VerificationRequest
	Attachments []string `json:"attachments"`
}

func newRequestView(request *models.VerificationRequest) RequestView {
	return RequestView{
		VerificationRequest: request,
		Attachments:         request.AttachmentList(),
	}
}

// ListRequests 获取验证申请列表
func (h *Handler) ListRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.RequestListFilter{
		Page:      page,
		PageSize:  pageSize,
		DiscordID: strings.TrimSpace(c.Query("discord_id")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
	if from := strings.TrimSpace(c.Query("created_from")); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := strings.TrimSpace(c.Query("created_to")); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &t
		}
	}

	requests, total, err := h.RequestService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "request list failed", err)
		return
	}

	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, newRequestView(&requests[i]))
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, views, pagination)
}

// GetRequest 获取验证申请详情
func (h *Handler) GetRequest(c *gin.Context) {
	request, err := h.RequestService.GetStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			respondError(c, response.CodeNotFound, "request not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "request fetch failed", err)
		return
	}
	response.Success(c, newRequestView(request))
}

// ReviewRequest 审核操作请求体
type ReviewRequest struct {
	Note string `json:"note"`
}

// ApproveRequest 通过验证申请
func (h *Handler) ApproveRequest(c *gin.Context) {
	h.finalizeRequest(c, true)
}

// RejectRequest 拒绝验证申请
func (h *Handler) RejectRequest(c *gin.Context) {
	h.finalizeRequest(c, false)
}

func (h *Handler) finalizeRequest(c *gin.Context, approve bool) {
	reviewer, ok := h.reviewerName(c)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var (
		request *models.VerificationRequest
		err     error
	)
	if approve {
		request, err = h.RequestService.Approve(c.Param("id"), reviewer, req.Note)
	} else {
		request, err = h.RequestService.Reject(c.Param("id"), reviewer, req.Note)
	}
	if err != nil {
		var finalized *service.RequestFinalizedError
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			respondError(c, response.CodeNotFound, "request not found", nil)
		case errors.As(err, &finalized):
			respondError(c, response.CodeBadRequest, "request already "+finalized.Status, nil)
		default:
			respondError(c, response.CodeInternal, "review failed", err)
		}
		return
	}
	response.Success(c, newRequestView(request))
}

// reviewerName 解析当前管理员的审核人标识
func (h *Handler) reviewerName(c *gin.Context) (string, bool) {
	adminID, ok := getAdminID(c)
	if !ok {
		return "", false
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil || admin == nil {
		respondError(c, response.CodeUnauthorized, "unauthorized", err)
		return "", false
	}
	return admin.Username, true
}
