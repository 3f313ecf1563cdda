package models

import "time"

// VerifyCode 一次性验证码记录
// 每个 Discord 用户至多一条有效记录；校验成功后整行删除（单次使用）
type VerifyCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`                  // 主键
	DiscordID string    `gorm:"uniqueIndex;not null" json:"discord_id"` // Discord 用户 ID
	Code      string    `gorm:"not null" json:"-"`                     // 验证码（不返回给前端）
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`               // 过期时间
	LastSent  time.Time `gorm:"index" json:"last_sent"`                // 最近发送时间（冷却窗口基准）
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // 创建时间
}

// TableName 指定表名
func (VerifyCode) TableName() string {
	return "verify_codes"
}
