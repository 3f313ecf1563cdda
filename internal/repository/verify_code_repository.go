package repository

import (
	"errors"

	"github.com/khxzi/passport/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VerifyCodeRepository 一次性验证码数据访问接口
type VerifyCodeRepository interface {
	GetByDiscordID(discordID string) (*models.VerifyCode, error)
	Save(code *models.VerifyCode) error
	DeleteByDiscordID(discordID string) error
}

// GormVerifyCodeRepository GORM 实现
type GormVerifyCodeRepository struct {
	db *gorm.DB
}

// NewVerifyCodeRepository 创建验证码仓库
func NewVerifyCodeRepository(db *gorm.DB) *GormVerifyCodeRepository {
	return &GormVerifyCodeRepository{db: db}
}

// GetByDiscordID 获取某用户当前验证码记录，不存在时返回 nil
func (r *GormVerifyCodeRepository) GetByDiscordID(discordID string) (*models.VerifyCode, error) {
	var record models.VerifyCode
	if err := r.db.Where("discord_id = ?", discordID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Save 写入验证码记录；同一 discord_id 的旧记录整行覆盖
func (r *GormVerifyCodeRepository) Save(code *models.VerifyCode) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "last_sent"}),
	}).Create(code).Error
}

// DeleteByDiscordID 删除验证码记录（硬删除，单次使用语义）
func (r *GormVerifyCodeRepository) DeleteByDiscordID(discordID string) error {
	return r.db.Where("discord_id = ?", discordID).Delete(&models.VerifyCode{}).Error
}
