package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/khxzi/passport/internal/provider"
	"github.com/khxzi/passport/internal/queue"

	"github.com/hibiken/asynq"
)

func newTestConsumer() *Consumer {
	return NewConsumer(&provider.Container{})
}

func TestHandleOutcomeDMInvalidPayload(t *testing.T) {
	c := newTestConsumer()
	task := asynq.NewTask(queue.TaskVerifyOutcomeDM, []byte("not-json"))
	if err := c.handleOutcomeDM(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleOutcomeDMSkipEmptyDiscordID(t *testing.T) {
	c := newTestConsumer()
	body, _ := json.Marshal(queue.OutcomeDMPayload{Outcome: "approved"})
	task := asynq.NewTask(queue.TaskVerifyOutcomeDM, body)
	if err := c.handleOutcomeDM(context.Background(), task); err != nil {
		t.Fatalf("empty discord_id should be skipped, got %v", err)
	}
}

func TestHandleOutcomeDMSkipBotDisabled(t *testing.T) {
	c := newTestConsumer()
	body, _ := json.Marshal(queue.OutcomeDMPayload{DiscordID: "42", Outcome: "approved"})
	task := asynq.NewTask(queue.TaskVerifyOutcomeDM, body)
	if err := c.handleOutcomeDM(context.Background(), task); err != nil {
		t.Fatalf("disabled bot should not fail the task, got %v", err)
	}
}

func TestHandleReviewPanelSkipMissingService(t *testing.T) {
	c := newTestConsumer()
	body, _ := json.Marshal(queue.ReviewPanelPayload{RequestID: "req-1"})
	task := asynq.NewTask(queue.TaskVerifyReviewPanel, body)
	if err := c.handleReviewPanel(context.Background(), task); err != nil {
		t.Fatalf("missing request service should be skipped, got %v", err)
	}
}

func TestHandleAuditLogSkipBotDisabled(t *testing.T) {
	c := newTestConsumer()
	body, _ := json.Marshal(queue.AuditLogPayload{DiscordID: "42", Outcome: "rejected"})
	task := asynq.NewTask(queue.TaskVerifyAuditLog, body)
	if err := c.handleAuditLog(context.Background(), task); err != nil {
		t.Fatalf("disabled bot should not fail the task, got %v", err)
	}
}
