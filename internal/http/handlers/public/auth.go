package public

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/khxzi/passport/internal/cache"
	"github.com/khxzi/passport/internal/http/handlers/shared"
	"github.com/khxzi/passport/internal/service"

	"github.com/gin-gonic/gin"
)

// Login 跳转 Discord 授权页
func (h *Handler) Login(c *gin.Context) {
	if h.OAuth == nil || !h.OAuth.Configured() {
		c.String(http.StatusInternalServerError, "OAuth is not configured")
		return
	}
	state, err := cache.NewOAuthState(c.Request.Context())
	if err != nil {
		shared.RequestLog(c).Errorw("oauth_state_create_failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}
	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

// DiscordCallback 处理 OAuth 回调
// 服务器拉人与身份组副作用失败不阻断跳转，仅记录日志
func (h *Handler) DiscordCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "No code provided")
		return
	}

	ok, err := cache.ConsumeOAuthState(c.Request.Context(), c.Query("state"))
	if err != nil {
		shared.RequestLog(c).Errorw("oauth_state_check_failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}
	if !ok {
		c.String(http.StatusBadRequest, "Invalid state")
		return
	}

	token, err := h.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		shared.RequestLog(c).Errorw("oauth_exchange_failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	user, err := h.OAuth.FetchUser(c.Request.Context(), token)
	if err != nil {
		shared.RequestLog(c).Errorw("oauth_fetch_user_failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	if h.Bot != nil && h.Bot.Enabled() {
		if err := h.Bot.JoinGuild(user.ID, token.AccessToken); err != nil {
			shared.RequestLog(c).Warnw("oauth_guild_join_failed",
				"discord_id", user.ID, "error", err)
		}
	}

	session, err := service.EncodeSession(service.DiscordSession{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        user.Avatar,
	})
	if err != nil {
		shared.RequestLog(c).Errorw("oauth_session_encode_failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}

	frontend := strings.TrimRight(h.Config.Server.FrontendURL, "/")
	c.Redirect(http.StatusFound, frontend+"/verify.html?session="+url.QueryEscape(session))
}
