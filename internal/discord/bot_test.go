package discord

import (
	"strings"
	"testing"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"

	"github.com/bwmarrin/discordgo"
)

func TestNewBotWithoutTokenDisabled(t *testing.T) {
	cfg := &config.Config{}
	bot, err := NewBot(cfg)
	if err != nil {
		t.Fatalf("NewBot error: %v", err)
	}
	if bot.Enabled() {
		t.Fatalf("expected bot disabled without token")
	}
	if err := bot.SendCodeDM("42", "123456"); err != ErrBotDisabled {
		t.Fatalf("expected ErrBotDisabled, got %v", err)
	}
	if err := bot.GrantVerified("42"); err != ErrBotDisabled {
		t.Fatalf("expected ErrBotDisabled, got %v", err)
	}
}

func TestOutcomeEmbed(t *testing.T) {
	approved := outcomeEmbed(constants.ReviewOutcomeApproved, "")
	if approved.Color != colorSuccess {
		t.Fatalf("approved embed color = %#x", approved.Color)
	}
	if !strings.Contains(approved.Description, "verified") {
		t.Fatalf("approved embed description = %q", approved.Description)
	}

	rejected := outcomeEmbed(constants.ReviewOutcomeRejected, "blurry screenshot")
	if rejected.Color != colorFailed {
		t.Fatalf("rejected embed color = %#x", rejected.Color)
	}
	if !strings.Contains(rejected.Description, "blurry screenshot") {
		t.Fatalf("rejected embed should carry reviewer note, got %q", rejected.Description)
	}

	revoked := outcomeEmbed(constants.ReviewOutcomeRevoked, "")
	if revoked.Title != "Verification Revoked" {
		t.Fatalf("revoked embed title = %q", revoked.Title)
	}
}

func TestIsAdmin(t *testing.T) {
	bot := &Bot{cfg: &config.DiscordConfig{AdminRoleID: "900"}}

	if bot.isAdmin(nil) {
		t.Fatalf("nil member should not be admin")
	}
	if bot.isAdmin(&discordgo.Member{Roles: []string{"1", "2"}}) {
		t.Fatalf("member without admin role should not be admin")
	}
	if !bot.isAdmin(&discordgo.Member{Roles: []string{"1", "900"}}) {
		t.Fatalf("member with admin role should be admin")
	}

	open := &Bot{cfg: &config.DiscordConfig{}}
	if open.isAdmin(&discordgo.Member{Roles: []string{"900"}}) {
		t.Fatalf("unset admin role must deny everyone")
	}
}
