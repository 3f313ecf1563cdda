package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateRequestID 申请编号唯一索引冲突
var ErrDuplicateRequestID = errors.New("verification request id already exists")

// VerificationRequestRepository 验证申请数据访问接口
type VerificationRequestRepository interface {
	Create(request *models.VerificationRequest) error
	GetByRequestID(requestID string) (*models.VerificationRequest, error)
	List(filter RequestListFilter) ([]models.VerificationRequest, int64, error)
	Finalize(requestID, status, reviewerID, reviewerNote string) (int64, error)
	UpdatePanelMessageID(requestID, messageID string) error
	CountByDiscordID(discordID string) (int64, error)
	CountRejectedByDiscordID(discordID string) (int64, error)
}

// GormVerificationRequestRepository GORM 实现
type GormVerificationRequestRepository struct {
	db *gorm.DB
}

// NewVerificationRequestRepository 创建验证申请仓库
func NewVerificationRequestRepository(db *gorm.DB) *GormVerificationRequestRepository {
	return &GormVerificationRequestRepository{db: db}
}

// Create 创建验证申请记录
func (r *GormVerificationRequestRepository) Create(request *models.VerificationRequest) error {
	if err := r.db.Create(request).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateRequestID
		}
		return err
	}
	return nil
}

// GetByRequestID 根据申请编号获取记录，不存在时返回 nil
func (r *GormVerificationRequestRepository) GetByRequestID(requestID string) (*models.VerificationRequest, error) {
	var record models.VerificationRequest
	if err := r.db.Where("request_id = ?", requestID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// List 查询验证申请列表
func (r *GormVerificationRequestRepository) List(filter RequestListFilter) ([]models.VerificationRequest, int64, error) {
	query := r.db.Model(&models.VerificationRequest{})
	if filter.DiscordID != "" {
		query = query.Where("discord_id = ?", filter.DiscordID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	records := make([]models.VerificationRequest, 0)
	if err := applyPagination(query.Order("created_at desc, id desc"), filter.Page, filter.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Finalize 原子终结待审核申请，返回受影响行数
// 仅在当前状态为 pending 时生效；受影响行数为 0 时由调用方区分
// 记录不存在与已终结两种情况
func (r *GormVerificationRequestRepository) Finalize(requestID, status, reviewerID, reviewerNote string) (int64, error) {
	result := r.db.Model(&models.VerificationRequest{}).
		Where("request_id = ? AND status = ?", requestID, constants.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reviewer_id":   reviewerID,
			"reviewer_note": reviewerNote,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdatePanelMessageID 记录审核面板消息 ID
func (r *GormVerificationRequestRepository) UpdatePanelMessageID(requestID, messageID string) error {
	return r.db.Model(&models.VerificationRequest{}).
		Where("request_id = ?", requestID).
		Update("panel_message_id", messageID).Error
}

// CountByDiscordID 统计某用户的申请总数
func (r *GormVerificationRequestRepository) CountByDiscordID(discordID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.VerificationRequest{}).
		Where("discord_id = ?", discordID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountRejectedByDiscordID 统计某用户被拒绝的申请数
func (r *GormVerificationRequestRepository) CountRejectedByDiscordID(discordID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.VerificationRequest{}).
		Where("discord_id = ? AND status = ?", discordID, constants.RequestStatusRejected).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "duplicate key value")
}
