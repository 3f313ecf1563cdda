package discord

import (
	"fmt"
	"strings"

	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/service"

	"github.com/bwmarrin/discordgo"
)

// PostReviewPanel 在审核频道发布申请面板，返回消息 ID
func (b *Bot) PostReviewPanel(request *models.VerificationRequest, stats *service.UserStats) (string, error) {
	if !b.Enabled() {
		return "", ErrBotDisabled
	}
	channelID := strings.TrimSpace(b.cfg.ReviewChannelID)
	if channelID == "" {
		return "", fmt.Errorf("review channel not configured")
	}

	joined := "Unknown"
	var thumbnail *discordgo.MessageEmbedThumbnail
	if member, err := b.session.GuildMember(b.cfg.GuildID, request.DiscordID); err == nil {
		joined = fmt.Sprintf("<t:%d:R>", member.JoinedAt.Unix())
		if member.User != nil {
			thumbnail = &discordgo.MessageEmbedThumbnail{URL: member.User.AvatarURL("")}
		}
	}

	method := request.Method
	if method == "" {
		method = "N/A"
	}
	notes := request.Notes
	if notes == "" {
		notes = "None"
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Passport: Verification Request",
		Color:     colorPending,
		Thumbnail: thumbnail,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("<@%s>", request.DiscordID), Inline: true},
			{Name: "Id", Value: request.DiscordID, Inline: true},
			{Name: "Joined", Value: joined, Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d times", stats.Failed), Inline: true},
			{Name: "Attempts", Value: fmt.Sprintf("%d tries", stats.Attempts), Inline: true},
			{Name: "Method", Value: method, Inline: false},
			{Name: "Notes", Value: notes, Inline: false},
		},
		Timestamp: request.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Request ID: " + request.RequestID},
	}

	if attachments := request.AttachmentList(); len(attachments) > 0 {
		links := make([]string, 0, len(attachments))
		for i, name := range attachments {
			links = append(links, fmt.Sprintf("[Attachment %d](%s/uploads/%s)", i+1, b.frontendURL, name))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Attachments",
			Value: strings.Join(links, "\n"),
		})
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: "approve_" + request.RequestID,
				},
				discordgo.Button{
					Label:    "Reject",
					Style:    discordgo.DangerButton,
					CustomID: "reject_" + request.RequestID,
				},
			},
		},
	}

	msg, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return "", fmt.Errorf("post review panel: %w", err)
	}
	logger.Infow("discord_review_panel_posted", "request_id", request.RequestID, "message_id", msg.ID)
	return msg.ID, nil
}

// PostAuditLog 在审计频道记录审核结论，附带撤销验证的管理菜单
func (b *Bot) PostAuditLog(discordID, outcome, reviewerID string) error {
	if !b.Enabled() {
		return ErrBotDisabled
	}
	channelID := strings.TrimSpace(b.cfg.AuditChannelID)
	if channelID == "" {
		return nil
	}

	joined := "Unknown"
	var thumbnail *discordgo.MessageEmbedThumbnail
	if member, err := b.session.GuildMember(b.cfg.GuildID, discordID); err == nil {
		joined = fmt.Sprintf("<t:%d:R>", member.JoinedAt.Unix())
		if member.User != nil {
			thumbnail = &discordgo.MessageEmbedThumbnail{URL: member.User.AvatarURL("")}
		}
	}

	var attempts int64 = 1
	if b.requests != nil {
		if stats, err := b.requests.Stats(discordID); err == nil && stats.Attempts > 0 {
			attempts = stats.Attempts
		}
	}

	title := "Passport: Failed"
	color := colorFailed
	if outcome == constants.ReviewOutcomeApproved {
		title = "Passport: Success"
		color = colorSuccess
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "├─ User: <@%s> `%s`\n", discordID, discordID)
	fmt.Fprintf(&desc, "├─ Joined: %s\n", joined)
	if reviewerID != "" {
		fmt.Fprintf(&desc, "├─ Reviewer: <@%s>\n", reviewerID)
	}
	fmt.Fprintf(&desc, "└─ Attempts: %d tries", attempts)

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Color:       color,
		Thumbnail:   thumbnail,
		Description: desc.String(),
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    "manage_passport_" + discordID,
					Placeholder: "Manage passport verification overrides.",
					Options: []discordgo.SelectMenuOption{
						{
							Label:       "Unverify User Passport",
							Description: "Revoke verification status",
							Value:       "unverify",
							Emoji:       &discordgo.ComponentEmoji{Name: "🚫"},
						},
					},
				},
			},
		},
	}

	if _, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}); err != nil {
		return fmt.Errorf("post audit log: %w", err)
	}
	return nil
}
