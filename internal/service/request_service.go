package service

import (
	"errors"
	"strings"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/repository"

	"github.com/google/uuid"
)

// RequestService 验证申请生命周期服务
// pending 为唯一非终态；approved/rejected 一经写入不可变更
type RequestService struct {
	cfg         *config.Config
	requestRepo repository.VerificationRequestRepository
	gateway     DiscordGateway
	notifier    VerifyNotifier
	locks       *KeyedMutex
}

// NewRequestService 创建验证申请服务
func NewRequestService(cfg *config.Config, requestRepo repository.VerificationRequestRepository, gateway DiscordGateway, notifier VerifyNotifier) *RequestService {
	return &RequestService{
		cfg:         cfg,
		requestRepo: requestRepo,
		gateway:     gateway,
		notifier:    notifier,
		locks:       NewKeyedMutex(),
	}
}

// UserStats 用户维度的申请统计
type UserStats struct {
	Attempts int64 `json:"attempts"`
	Failed   int64 `json:"failed"`
}

// CreateRequest 创建人工审核申请
func (s *RequestService) CreateRequest(discordID, method, notes string, attachments []string) (*models.VerificationRequest, error) {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return nil, ErrMissingDiscordID
	}

	method = strings.TrimSpace(method)
	if method == "" {
		method = constants.VerifyMethodManual
	}

	request := &models.VerificationRequest{
		RequestID: uuid.NewString(),
		DiscordID: discordID,
		Status:    constants.RequestStatusPending,
		Method:    method,
		Notes:     strings.TrimSpace(notes),
	}
	if err := request.SetAttachmentList(attachments); err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(request); err != nil {
		if errors.Is(err, repository.ErrDuplicateRequestID) {
			return nil, ErrRequestExists
		}
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueReviewPanel(request.RequestID); err != nil {
			logger.Warnw("review_panel_enqueue_failed", "request_id", request.RequestID, "error", err)
		}
	}

	logger.Infow("verification_request_created",
		"request_id", request.RequestID,
		"discord_id", discordID,
		"method", method,
	)
	return request, nil
}

// Approve 通过申请
func (s *RequestService) Approve(requestID, reviewerID, note string) (*models.VerificationRequest, error) {
	return s.finalize(requestID, constants.RequestStatusApproved, reviewerID, note)
}

// Reject 拒绝申请
func (s *RequestService) Reject(requestID, reviewerID, note string) (*models.VerificationRequest, error) {
	return s.finalize(requestID, constants.RequestStatusRejected, reviewerID, note)
}

func (s *RequestService) finalize(requestID, status, reviewerID, note string) (*models.VerificationRequest, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrRequestNotFound
	}

	unlock := s.locks.Lock("request:" + requestID)
	defer unlock()

	affected, err := s.requestRepo.Finalize(requestID, status, reviewerID, note)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		current, err := s.requestRepo.GetByRequestID(requestID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrRequestNotFound
		}
		return nil, &RequestFinalizedError{Status: current.Status}
	}

	record, err := s.requestRepo.GetByRequestID(requestID)
	if err != nil {
		return nil, err
	}

	// 状态已提交，身份组与通知失败不回滚
	if status == constants.RequestStatusApproved {
		if err := s.gateway.GrantVerified(record.DiscordID); err != nil {
			logger.Errorw("verified_role_grant_failed",
				"request_id", requestID,
				"discord_id", record.DiscordID,
				"error", err,
			)
		}
	}

	outcome := constants.ReviewOutcomeApproved
	if status == constants.RequestStatusRejected {
		outcome = constants.ReviewOutcomeRejected
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueOutcomeDM(record.DiscordID, outcome, note); err != nil {
			logger.Warnw("outcome_dm_enqueue_failed", "request_id", requestID, "error", err)
		}
		if err := s.notifier.EnqueueAuditLog(record.DiscordID, outcome, reviewerID); err != nil {
			logger.Warnw("audit_log_enqueue_failed", "request_id", requestID, "error", err)
		}
	}

	logger.Infow("verification_request_finalized",
		"request_id", requestID,
		"status", status,
		"reviewer_id", reviewerID,
	)
	return record, nil
}

// Revoke 撤销用户的已验证身份
func (s *RequestService) Revoke(discordID, reviewerID string) error {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return ErrMissingDiscordID
	}

	if err := s.gateway.RevokeVerified(discordID); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueAuditLog(discordID, constants.ReviewOutcomeRevoked, reviewerID); err != nil {
			logger.Warnw("audit_log_enqueue_failed", "discord_id", discordID, "error", err)
		}
	}

	logger.Infow("verification_revoked", "discord_id", discordID, "reviewer_id", reviewerID)
	return nil
}

// GetStatus 查询申请状态
func (s *RequestService) GetStatus(requestID string) (*models.VerificationRequest, error) {
	record, err := s.requestRepo.GetByRequestID(strings.TrimSpace(requestID))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRequestNotFound
	}
	return record, nil
}

// List 查询申请列表
func (s *RequestService) List(filter repository.RequestListFilter) ([]models.VerificationRequest, int64, error) {
	return s.requestRepo.List(filter)
}

// Stats 统计用户申请情况：attempts 为全部申请数，failed 为被拒绝数
func (s *RequestService) Stats(discordID string) (*UserStats, error) {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return nil, ErrMissingDiscordID
	}

	attempts, err := s.requestRepo.CountByDiscordID(discordID)
	if err != nil {
		return nil, err
	}
	failed, err := s.requestRepo.CountRejectedByDiscordID(discordID)
	if err != nil {
		return nil, err
	}
	return &UserStats{Attempts: attempts, Failed: failed}, nil
}
