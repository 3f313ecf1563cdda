package discord

import (
	"fmt"
	"strings"

	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/logger"

	"github.com/bwmarrin/discordgo"
)

// SendCodeDM 私信发送一次性验证码
func (b *Bot) SendCodeDM(discordID, code string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	channel, err := b.session.UserChannelCreate(discordID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Verification Code",
		Description: fmt.Sprintf("Your verification code is:\n# %s\n\nPlease enter this code on the website to complete your verification.", code),
		Color:       colorBlurple,
		Footer:      &discordgo.MessageEmbedFooter{Text: "This code expires in 5 minutes."},
	}
	if _, err := b.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("send code dm: %w", err)
	}
	return nil
}

// GrantVerified 授予已验证身份组并移除未验证身份组
func (b *Bot) GrantVerified(discordID string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	if err := b.session.GuildMemberRoleAdd(b.cfg.GuildID, discordID, b.cfg.VerifiedRoleID); err != nil {
		return fmt.Errorf("add verified role: %w", err)
	}
	if b.cfg.UnverifiedRoleID != "" {
		if err := b.session.GuildMemberRoleRemove(b.cfg.GuildID, discordID, b.cfg.UnverifiedRoleID); err != nil {
			return fmt.Errorf("remove unverified role: %w", err)
		}
	}
	return nil
}

// RevokeVerified 移除已验证身份组并恢复未验证身份组
func (b *Bot) RevokeVerified(discordID string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	if err := b.session.GuildMemberRoleRemove(b.cfg.GuildID, discordID, b.cfg.VerifiedRoleID); err != nil {
		return fmt.Errorf("remove verified role: %w", err)
	}
	if b.cfg.UnverifiedRoleID != "" {
		if err := b.session.GuildMemberRoleAdd(b.cfg.GuildID, discordID, b.cfg.UnverifiedRoleID); err != nil {
			return fmt.Errorf("add unverified role: %w", err)
		}
	}
	return nil
}

// JoinGuild 使用 OAuth 授权令牌将用户拉入服务器并挂未验证身份组
// 用户已在服务器内时 Discord 返回 204，视为成功
func (b *Bot) JoinGuild(discordID, accessToken string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	params := &discordgo.GuildMemberAddParams{AccessToken: accessToken}
	if b.cfg.UnverifiedRoleID != "" {
		params.Roles = []string{b.cfg.UnverifiedRoleID}
	}
	if err := b.session.GuildMemberAdd(b.cfg.GuildID, discordID, params); err != nil {
		return fmt.Errorf("guild member add: %w", err)
	}
	return nil
}

// SendOutcomeDM 私信通知审核结论
// 拒绝或撤销的私信发送失败仅记录，由调用方决定是否重试
func (b *Bot) SendOutcomeDM(discordID, outcome, note string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	channel, err := b.session.UserChannelCreate(discordID)
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}

	send := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{outcomeEmbed(outcome, note)}}
	if outcome == constants.ReviewOutcomeApproved && b.cfg.InviteURL != "" {
		send.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label: "Go to Server",
						Style: discordgo.LinkButton,
						URL:   b.cfg.InviteURL,
					},
				},
			},
		}
	}
	if _, err := b.session.ChannelMessageSendComplex(channel.ID, send); err != nil {
		return fmt.Errorf("send outcome dm: %w", err)
	}
	logger.Infow("discord_outcome_dm_sent", "discord_id", discordID, "outcome", outcome)
	return nil
}

func outcomeEmbed(outcome, note string) *discordgo.MessageEmbed {
	switch outcome {
	case constants.ReviewOutcomeApproved:
		return &discordgo.MessageEmbed{
			Title:       "🎉 Verified Successfully!",
			Description: "Congratulations, you have been verified! You now have access to the server.",
			Color:       colorSuccess,
		}
	case constants.ReviewOutcomeRevoked:
		return &discordgo.MessageEmbed{
			Title:       "Verification Revoked",
			Description: "Your verification has been revoked by a moderator. You may restart the verification process at any time.",
			Color:       colorFailed,
		}
	default:
		description := "Unfortunately your verification request was not approved."
		if strings.TrimSpace(note) != "" {
			description += "\n\n**Reviewer note:** " + note
		}
		return &discordgo.MessageEmbed{
			Title:       "Verification Failed",
			Description: description,
			Color:       colorFailed,
		}
	}
}
