package models

import (
	"encoding/json"
	"time"
)

// VerificationRequest 验证申请记录
type VerificationRequest struct {
	ID             uint      `gorm:"primarykey" json:"-"`                          // 主键
	RequestID      string    `gorm:"uniqueIndex;not null" json:"id"`               // 对外申请编号（UUID）
	DiscordID      string    `gorm:"index;not null" json:"discord_id"`             // 申请人 Discord ID
	Status         string    `gorm:"index;not null;default:pending" json:"status"` // pending/approved/rejected
	Method         string    `gorm:"not null" json:"method"`                       // 验证方式
	Notes          string    `json:"notes"`                                        // 申请备注
	Attachments    string    `json:"-"`                                            // 附件文件名列表（JSON）
	ReviewerID     string    `gorm:"index" json:"reviewer_id"`                     // 审核人 Discord ID
	ReviewerNote   string    `json:"reviewer_note"`                                // 审核备注
	PanelMessageID string    `json:"-"`                                            // 审核面板消息 ID
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt      time.Time `gorm:"index" json:"updated_at"`                      // 更新时间
}

// TableName 指定表名
func (VerificationRequest) TableName() string {
	return "verification_requests"
}

// AttachmentList 解析附件文件名列表
func (r *VerificationRequest) AttachmentList() []string {
	if r == nil || r.Attachments == "" {
		return nil
	}
	var files []string
	if err := json.Unmarshal([]byte(r.Attachments), &files); err != nil {
		return nil
	}
	return files
}

// SetAttachmentList 序列化附件文件名列表
func (r *VerificationRequest) SetAttachmentList(files []string) error {
	if len(files) == 0 {
		r.Attachments = ""
		return nil
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return err
	}
	r.Attachments = string(raw)
	return nil
}

// IsPending 是否处于待审核状态
func (r *VerificationRequest) IsPending() bool {
	return r != nil && r.Status == "pending"
}
