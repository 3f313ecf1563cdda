package main

import (
	"time"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/logger"
	"github.com/khxzi/passport/internal/models"

	"github.com/google/uuid"
)

// 开发环境演示数据，方便本地调试管理后台与审核流程。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	requests := []models.VerificationRequest{
		{
			RequestID: uuid.NewString(),
			DiscordID: "100000000000000001",
			Status:    constants.RequestStatusPending,
			Method:    constants.VerifyMethodCode,
			Notes:     "Joined via invite link, waiting for review",
		},
		{
			RequestID: uuid.NewString(),
			DiscordID: "100000000000000002",
			Status:    constants.RequestStatusPending,
			Method:    constants.VerifyMethodManual,
			Notes:     "Could not receive DMs, submitted screenshots instead",
		},
		{
			RequestID:    uuid.NewString(),
			DiscordID:    "100000000000000003",
			Status:       constants.RequestStatusApproved,
			Method:       constants.VerifyMethodCode,
			ReviewerID:   "seed",
			ReviewerNote: "Looks good",
		},
		{
			RequestID:    uuid.NewString(),
			DiscordID:    "100000000000000004",
			Status:       constants.RequestStatusRejected,
			Method:       constants.VerifyMethodManual,
			ReviewerID:   "seed",
			ReviewerNote: "Account too new",
		},
	}

	for _, req := range requests {
		var count int64
		if err := models.DB.Model(&models.VerificationRequest{}).
			Where("discord_id = ? AND status = ?", req.DiscordID, req.Status).
			Count(&count).Error; err != nil {
			stdLog.Printf("Failed to check request for %s: %v", req.DiscordID, err)
			continue
		}
		if count > 0 {
			stdLog.Printf("Request already exists: %s (%s)", req.DiscordID, req.Status)
			continue
		}
		if err := models.DB.Create(&req).Error; err != nil {
			stdLog.Printf("Failed to create request for %s: %v", req.DiscordID, err)
			continue
		}
		stdLog.Printf("Created request: %s (%s)", req.DiscordID, req.Status)
	}

	// 一条未过期的验证码，便于调试 /api/verify/check
	code := models.VerifyCode{
		DiscordID: "100000000000000001",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
	var existing models.VerifyCode
	if err := models.DB.Where("discord_id = ?", code.DiscordID).First(&existing).Error; err != nil {
		if err := models.DB.Create(&code).Error; err != nil {
			stdLog.Printf("Failed to create verify code: %v", err)
		} else {
			stdLog.Printf("Created verify code for %s", code.DiscordID)
		}
	} else {
		stdLog.Printf("Verify code already exists for %s", code.DiscordID)
	}

	stdLog.Println("Seed data initialized")
}
