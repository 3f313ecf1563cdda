package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/khxzi/passport/internal/discord"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/provider"
	"github.com/khxzi/passport/internal/queue"
	"github.com/khxzi/passport/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerifyOutcomeDM, c.handleOutcomeDM)
	mux.HandleFunc(queue.TaskVerifyReviewPanel, c.handleReviewPanel)
	mux.HandleFunc(queue.TaskVerifyAuditLog, c.handleAuditLog)
}

func (c *Consumer) botReady() bool {
	return c != nil && c.Bot != nil && c.Bot.Enabled()
}

func (c *Consumer) handleOutcomeDM(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_outcome_dm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OutcomeDMPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_outcome_dm_unmarshal_failed", "error", err)
		return err
	}
	if payload.DiscordID == "" {
		logger.Debugw("worker_outcome_dm_skip_invalid_payload")
		return nil
	}
	if !c.botReady() {
		logger.Warnw("worker_outcome_dm_skip_bot_disabled", "discord_id", payload.DiscordID)
		return nil
	}
	if err := c.Bot.SendOutcomeDM(payload.DiscordID, payload.Outcome, payload.Note); err != nil {
		if errors.Is(err, discord.ErrBotDisabled) {
			return nil
		}
		logger.Warnw("worker_outcome_dm_send_failed",
			"discord_id", payload.DiscordID, "outcome", payload.Outcome, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleReviewPanel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_review_panel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReviewPanelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_review_panel_unmarshal_failed", "error", err)
		return err
	}
	if payload.RequestID == "" {
		logger.Debugw("worker_review_panel_skip_invalid_payload")
		return nil
	}
	if c.RequestService == nil {
		logger.Warnw("worker_review_panel_skip_request_service_nil", "request_id", payload.RequestID)
		return nil
	}

	request, err := c.RequestService.GetStatus(payload.RequestID)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			logger.Debugw("worker_review_panel_skip_request_not_found", "request_id", payload.RequestID)
			return nil
		}
		logger.Warnw("worker_review_panel_fetch_failed", "request_id", payload.RequestID, "error", err)
		return err
	}
	// 已出结论或已发布过面板的申请无需再发
	if !request.IsPending() || request.PanelMessageID != "" {
		logger.Debugw("worker_review_panel_skip_not_needed",
			"request_id", payload.RequestID, "status", request.Status)
		return nil
	}
	if !c.botReady() {
		logger.Warnw("worker_review_panel_skip_bot_disabled", "request_id", payload.RequestID)
		return nil
	}

	stats, err := c.RequestService.Stats(request.DiscordID)
	if err != nil {
		logger.Warnw("worker_review_panel_stats_failed", "request_id", payload.RequestID, "error", err)
		return err
	}
	messageID, err := c.Bot.PostReviewPanel(request, stats)
	if err != nil {
		if errors.Is(err, discord.ErrBotDisabled) {
			return nil
		}
		logger.Warnw("worker_review_panel_post_failed", "request_id", payload.RequestID, "error", err)
		return err
	}
	if err := c.RequestRepo.UpdatePanelMessageID(request.RequestID, messageID); err != nil {
		logger.Warnw("worker_review_panel_save_message_failed",
			"request_id", payload.RequestID, "message_id", messageID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleAuditLog(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_audit_log_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AuditLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_audit_log_unmarshal_failed", "error", err)
		return err
	}
	if payload.DiscordID == "" {
		logger.Debugw("worker_audit_log_skip_invalid_payload")
		return nil
	}
	if !c.botReady() {
		logger.Warnw("worker_audit_log_skip_bot_disabled", "discord_id", payload.DiscordID)
		return nil
	}
	if err := c.Bot.PostAuditLog(payload.DiscordID, payload.Outcome, payload.ReviewerID); err != nil {
		if errors.Is(err, discord.ErrBotDisabled) {
			return nil
		}
		logger.Warnw("worker_audit_log_post_failed",
			"discord_id", payload.DiscordID, "outcome", payload.Outcome, "error", err)
		return err
	}
	return nil
}
