package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	data := i.MessageComponentData()
	switch {
	case strings.HasPrefix(data.CustomID, "approve_"), strings.HasPrefix(data.CustomID, "reject_"):
		b.handleReviewButton(i, data)
	case strings.HasPrefix(data.CustomID, "manage_passport_"):
		b.handleManageSelect(i, data)
	}
}

func (b *Bot) isAdmin(member *discordgo.Member) bool {
	if member == nil || b.cfg.AdminRoleID == "" {
		return false
	}
	for _, role := range member.Roles {
		if role == b.cfg.AdminRoleID {
			return true
		}
	}
	return false
}

func (b *Bot) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Errorw("discord_interaction_reply_failed", "error", err)
	}
}

func (b *Bot) followupEphemeral(i *discordgo.InteractionCreate, content string) {
	_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		logger.Errorw("discord_interaction_followup_failed", "error", err)
	}
}

func (b *Bot) handleReviewButton(i *discordgo.InteractionCreate, data discordgo.MessageComponentInteractionData) {
	if !b.isAdmin(i.Member) {
		b.replyEphemeral(i, "You do not have permission to perform this action.")
		return
	}
	if b.requests == nil {
		b.replyEphemeral(i, "An error occurred while processing the request.")
		return
	}

	action, requestID, ok := strings.Cut(data.CustomID, "_")
	if !ok || requestID == "" {
		return
	}
	reviewerID := i.Member.User.ID

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		logger.Errorw("discord_interaction_defer_failed", "error", err)
		return
	}

	if action == "approve" {
		_, err = b.requests.Approve(requestID, reviewerID, "Approved via Button")
	} else {
		_, err = b.requests.Reject(requestID, reviewerID, "Rejected via Button")
	}

	if err != nil {
		var finalized *service.RequestFinalizedError
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			b.followupEphemeral(i, "Request not found.")
		case errors.As(err, &finalized):
			b.followupEphemeral(i, fmt.Sprintf("Request is already %s.", finalized.Status))
		default:
			logger.Errorw("discord_review_action_failed",
				"request_id", requestID, "action", action, "error", err)
			b.followupEphemeral(i, "An error occurred while processing the request.")
		}
		return
	}

	if action == "approve" {
		b.followupEphemeral(i, "Request approved successfully.")
	} else {
		b.followupEphemeral(i, "Request rejected.")
	}
	b.disableMessageButtons(i)
}

// disableMessageButtons 审核完成后禁用面板按钮，避免重复操作
func (b *Bot) disableMessageButtons(i *discordgo.InteractionCreate) {
	if i.Message == nil {
		return
	}
	components := make([]discordgo.MessageComponent, 0, len(i.Message.Components))
	for _, comp := range i.Message.Components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			components = append(components, comp)
			continue
		}
		next := discordgo.ActionsRow{}
		for _, inner := range row.Components {
			if btn, ok := inner.(*discordgo.Button); ok {
				disabled := *btn
				disabled.Disabled = true
				next.Components = append(next.Components, disabled)
				continue
			}
			next.Components = append(next.Components, inner)
		}
		components = append(components, next)
	}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    i.ChannelID,
		ID:         i.Message.ID,
		Components: &components,
	})
	if err != nil {
		logger.Warnw("discord_disable_buttons_failed", "message_id", i.Message.ID, "error", err)
	}
}

func (b *Bot) handleManageSelect(i *discordgo.InteractionCreate, data discordgo.MessageComponentInteractionData) {
	if !b.isAdmin(i.Member) {
		b.replyEphemeral(i, "You do not have permission to perform this action.")
		return
	}
	if b.requests == nil || len(data.Values) == 0 {
		return
	}

	discordID := strings.TrimPrefix(data.CustomID, "manage_passport_")
	if data.Values[0] != "unverify" {
		return
	}

	if err := b.requests.Revoke(discordID, i.Member.User.ID); err != nil {
		b.replyEphemeral(i, fmt.Sprintf("Failed to unverify: %v", err))
		return
	}
	b.replyEphemeral(i, fmt.Sprintf("Successfully unverified <@%s>.", discordID))
}
