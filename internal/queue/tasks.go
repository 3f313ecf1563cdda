package queue

import (
	"encoding/json"

	"github.com/khxzi/passport/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerifyOutcomeDM 审核结论私信任务
	TaskVerifyOutcomeDM = constants.TaskVerifyOutcomeDM
	// TaskVerifyReviewPanel 审核面板发布任务
	TaskVerifyReviewPanel = constants.TaskVerifyReviewPanel
	// TaskVerifyAuditLog 审计频道记录任务
	TaskVerifyAuditLog = constants.TaskVerifyAuditLog
)

// OutcomeDMPayload 审核结论私信任务载荷
type OutcomeDMPayload struct {
	DiscordID string `json:"discord_id"`
	Outcome   string `json:"outcome"`
	Note      string `json:"note"`
}

// ReviewPanelPayload 审核面板发布任务载荷
type ReviewPanelPayload struct {
	RequestID string `json:"request_id"`
}

// AuditLogPayload 审计频道记录任务载荷
type AuditLogPayload struct {
	DiscordID  string `json:"discord_id"`
	Outcome    string `json:"outcome"`
	ReviewerID string `json:"reviewer_id"`
}

// NewOutcomeDMTask 创建审核结论私信任务
func NewOutcomeDMTask(payload OutcomeDMPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyOutcomeDM, body), nil
}

// NewReviewPanelTask 创建审核面板发布任务
func NewReviewPanelTask(payload ReviewPanelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyReviewPanel, body), nil
}

// NewAuditLogTask 创建审计频道记录任务
func NewAuditLogTask(payload AuditLogPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerifyAuditLog, body), nil
}
