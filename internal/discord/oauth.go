package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/khxzi/passport/internal/config"

	"golang.org/x/oauth2"
)

const discordAPIBase = "https://discord.com/api"

// OAuthUser Discord 授权用户信息
type OAuthUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Email         string `json:"email"`
}

// OAuthClient Discord OAuth2 客户端
type OAuthClient struct {
	cfg *oauth2.Config
}

// NewOAuthClient 创建 OAuth2 客户端
func NewOAuthClient(cfg *config.DiscordOAuth) *OAuthClient {
	return &OAuthClient{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"email", "identify", "guilds.join", "openid", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/oauth2/authorize",
				TokenURL: discordAPIBase + "/oauth2/token",
			},
		},
	}
}

// Configured 判断客户端凭据是否就绪
func (c *OAuthClient) Configured() bool {
	return c != nil && strings.TrimSpace(c.cfg.ClientID) != "" && strings.TrimSpace(c.cfg.ClientSecret) != ""
}

// AuthCodeURL 生成授权跳转地址
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state)
}

// Exchange 用授权码换取访问令牌
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.cfg.Exchange(ctx, code)
}

// FetchUser 拉取授权用户信息
func (c *OAuthClient) FetchUser(ctx context.Context, token *oauth2.Token) (*OAuthUser, error) {
	client := c.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discordAPIBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discord user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch discord user: unexpected status %d", resp.StatusCode)
	}
	var user OAuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode discord user: %w", err)
	}
	return &user, nil
}
