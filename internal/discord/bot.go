package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/service"

	"github.com/bwmarrin/discordgo"
)

// ErrBotDisabled 机器人未配置或未启动
var ErrBotDisabled = errors.New("discord bot disabled")

const panelFooterText = "[Verification Panel](https://verify.khxzi.com)"

const (
	colorBlurple = 0x5865F2
	colorPending = 0xFFA500
	colorSuccess = 0x00FF00
	colorFailed  = 0xFF0000
)

// Bot Discord 机器人
// 实现 service.DiscordGateway，同时承载审核面板与交互回调
type Bot struct {
	cfg         *config.DiscordConfig
	frontendURL string
	session     *discordgo.Session
	requests    *service.RequestService
}

// NewBot 创建机器人实例
// bot_token 未配置时返回禁用状态的实例，网关调用将报错
func NewBot(cfg *config.Config) (*Bot, error) {
	bot := &Bot{
		cfg:         &cfg.Discord,
		frontendURL: strings.TrimRight(cfg.Server.FrontendURL, "/"),
	}
	token := strings.TrimSpace(cfg.Discord.BotToken)
	if token == "" {
		logger.Warnw("discord_bot_token_missing")
		return bot, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages
	bot.session = session
	return bot, nil
}

// SetRequestService 注入申请服务
// 交互回调需要在机器人构建之后才可用的服务，因此延迟注入
func (b *Bot) SetRequestService(svc *service.RequestService) {
	b.requests = svc
}

// Enabled 判断机器人是否可用
func (b *Bot) Enabled() bool {
	return b != nil && b.session != nil
}

// Name 服务名称
func (b *Bot) Name() string {
	return "discord-bot"
}

// Start 建立网关连接并阻塞至上下文取消
func (b *Bot) Start(ctx context.Context) error {
	if !b.Enabled() {
		logger.Warnw("discord_bot_disabled")
		<-ctx.Done()
		return nil
	}

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return err
	}
	logger.Infow("discord_bot_started", "guild_id", b.cfg.GuildID)

	<-ctx.Done()
	return nil
}

// Stop 断开网关连接
func (b *Bot) Stop(ctx context.Context) error {
	if !b.Enabled() {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Infow("discord_bot_ready", "bot_user", r.User.Username)
	if err := b.EnsureVerifyPanel(); err != nil {
		logger.Errorw("discord_ensure_verify_panel_failed", "error", err)
	}
}

// EnsureVerifyPanel 确保验证入口面板存在
// 以页脚文案匹配已有面板，存在则更新，否则新发
func (b *Bot) EnsureVerifyPanel() error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	channelID := strings.TrimSpace(b.cfg.PanelChannelID)
	if channelID == "" {
		logger.Warnw("discord_panel_channel_missing")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Verify Now — Khxzi",
		Description: "Click the button below to sign in with Discord and start your verification process.",
		Color:       colorBlurple,
		Footer:      &discordgo.MessageEmbedFooter{Text: panelFooterText},
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: "Verify Now",
					Style: discordgo.LinkButton,
					URL:   b.frontendURL,
				},
			},
		},
	}

	messages, err := b.session.ChannelMessages(channelID, 50, "", "", "")
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if len(msg.Embeds) == 0 || msg.Embeds[0].Footer == nil {
			continue
		}
		if msg.Embeds[0].Footer.Text != panelFooterText {
			continue
		}
		embeds := []*discordgo.MessageEmbed{embed}
		_, err = b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         msg.ID,
			Embeds:     &embeds,
			Components: &components,
		})
		if err == nil {
			logger.Infow("discord_verify_panel_updated", "message_id", msg.ID)
		}
		return err
	}

	msg, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return err
	}
	logger.Infow("discord_verify_panel_posted", "message_id", msg.ID)
	return nil
}
