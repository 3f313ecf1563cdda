package admin

import (
	"strings"

	"github.com/khxzi/passport/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RevokeUser 撤销用户验证状态
func (h *Handler) RevokeUser(c *gin.Context) {
	discordID := strings.TrimSpace(c.Param("discord_id"))
	if discordID == "" {
		respondError(c, response.CodeBadRequest, "missing discord id", nil)
		return
	}
	reviewer, ok := h.reviewerName(c)
	if !ok {
		return
	}

	if err := h.RequestService.Revoke(discordID, reviewer); err != nil {
		respondError(c, response.CodeInternal, "revoke failed", err)
		return
	}
	response.Success(c, nil)
}

// GetUserStats 获取用户验证统计
func (h *Handler) GetUserStats(c *gin.Context) {
	discordID := strings.TrimSpace(c.Param("discord_id"))
	if discordID == "" {
		respondError(c, response.CodeBadRequest, "missing discord id", nil)
		return
	}

	stats, err := h.RequestService.Stats(discordID)
	if err != nil {
		respondError(c, response.CodeInternal, "stats fetch failed", err)
		return
	}
	response.Success(c, stats)
}
