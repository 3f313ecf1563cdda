package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/repository"

	"github.com/google/uuid"
)

// VerifyService 一次性验证码服务
// 同一 Discord 用户的发码与校验通过键互斥锁串行执行
type VerifyService struct {
	cfg         *config.Config
	codeRepo    repository.VerifyCodeRepository
	requestRepo repository.VerificationRequestRepository
	gateway     DiscordGateway
	notifier    VerifyNotifier
	locks       *KeyedMutex
	now         func() time.Time
}

// NewVerifyService 创建验证码服务
func NewVerifyService(cfg *config.Config, codeRepo repository.VerifyCodeRepository, requestRepo repository.VerificationRequestRepository, gateway DiscordGateway, notifier VerifyNotifier) *VerifyService {
	return &VerifyService{
		cfg:         cfg,
		codeRepo:    codeRepo,
		requestRepo: requestRepo,
		gateway:     gateway,
		notifier:    notifier,
		locks:       NewKeyedMutex(),
		now:         time.Now,
	}
}

// IssueCode 签发一次性验证码并私信用户
// 冷却期内重复请求返回 CooldownError；私信失败时回滚已存储的验证码
func (s *VerifyService) IssueCode(discordID string) error {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return ErrMissingDiscordID
	}

	unlock := s.locks.Lock("code:" + discordID)
	defer unlock()

	latest, err := s.codeRepo.GetByDiscordID(discordID)
	if err != nil {
		return err
	}

	now := s.now()
	if latest != nil && !latest.LastSent.IsZero() {
		interval := time.Duration(resolveSendIntervalSeconds(s.cfg.VerifyCode)) * time.Second
		elapsed := now.Sub(latest.LastSent)
		if elapsed < interval {
			remaining := int((interval - elapsed + time.Second - 1) / time.Second)
			return &CooldownError{RemainingSeconds: remaining}
		}
	}

	code, err := randomVerifyCode()
	if err != nil {
		return err
	}

	record := &models.VerifyCode{
		DiscordID: discordID,
		Code:      code,
		ExpiresAt: now.Add(time.Duration(resolveExpireSeconds(s.cfg.VerifyCode)) * time.Second),
		LastSent:  now,
	}
	if err := s.codeRepo.Save(record); err != nil {
		return err
	}

	if err := s.gateway.SendCodeDM(discordID, code); err != nil {
		// 投递失败的验证码不能占住冷却窗口
		if delErr := s.codeRepo.DeleteByDiscordID(discordID); delErr != nil {
			logger.Errorw("verify_code_rollback_failed",
				"discord_id", discordID,
				"error", delErr,
			)
		}
		logger.Warnw("verify_code_delivery_failed", "discord_id", discordID, "error", err)
		return fmt.Errorf("%w: %v", ErrCodeDelivery, err)
	}

	logger.Infow("verify_code_sent", "discord_id", discordID)
	return nil
}

// CheckCode 校验一次性验证码
// 成功后删除记录（单次使用），授予身份组并落库一条已通过的验证申请；
// 过期的记录保留原样，由下一次签发覆盖
func (s *VerifyService) CheckCode(discordID, code string) error {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return ErrMissingDiscordID
	}

	unlock := s.locks.Lock("code:" + discordID)
	defer unlock()

	record, err := s.codeRepo.GetByDiscordID(discordID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrCodeNotFound
	}

	if !record.ExpiresAt.After(s.now()) {
		return ErrCodeExpired
	}
	if record.Code != strings.TrimSpace(code) {
		return ErrCodeMismatch
	}

	if err := s.codeRepo.DeleteByDiscordID(discordID); err != nil {
		return err
	}

	// 验证码已消费，此后的失败不再回滚
	if err := s.gateway.GrantVerified(discordID); err != nil {
		logger.Errorw("verified_role_grant_failed", "discord_id", discordID, "error", err)
	}

	request := &models.VerificationRequest{
		RequestID: uuid.NewString(),
		DiscordID: discordID,
		Status:    constants.RequestStatusApproved,
		Method:    constants.VerifyMethodCode,
	}
	if err := s.requestRepo.Create(request); err != nil {
		logger.Errorw("verification_record_create_failed", "discord_id", discordID, "error", err)
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueOutcomeDM(discordID, constants.ReviewOutcomeApproved, ""); err != nil {
			logger.Warnw("outcome_dm_enqueue_failed", "discord_id", discordID, "error", err)
		}
		if err := s.notifier.EnqueueAuditLog(discordID, constants.ReviewOutcomeApproved, ""); err != nil {
			logger.Warnw("audit_log_enqueue_failed", "discord_id", discordID, "error", err)
		}
	}

	logger.Infow("verify_code_checked", "discord_id", discordID, "request_id", request.RequestID)
	return nil
}

func resolveExpireSeconds(cfg config.VerifyCodeConfig) int {
	if cfg.ExpireSeconds <= 0 {
		return 300
	}
	return cfg.ExpireSeconds
}

func resolveSendIntervalSeconds(cfg config.VerifyCodeConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

// randomVerifyCode 生成 [100000, 999999] 区间内均匀分布的 6 位验证码
func randomVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
