package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:passport_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db failed: %v", err)
	}
	if err := db.AutoMigrate(&models.VerificationRequest{}, &models.VerifyCode{}); err != nil {
		t.Fatalf("migrate test db failed: %v", err)
	}
	return db
}

func TestCreateRejectsDuplicateRequestID(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerificationRequestRepository(db)

	first := &models.VerificationRequest{
		RequestID: "req-1",
		DiscordID: "user-1",
		Status:    constants.RequestStatusPending,
		Method:    constants.VerifyMethodManual,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	dup := &models.VerificationRequest{
		RequestID: "req-1",
		DiscordID: "user-2",
		Status:    constants.RequestStatusPending,
		Method:    constants.VerifyMethodManual,
	}
	if err := repo.Create(dup); err != ErrDuplicateRequestID {
		t.Fatalf("expected ErrDuplicateRequestID, got %v", err)
	}
}

func TestFinalizeOnlyAffectsPendingRequests(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerificationRequestRepository(db)

	request := &models.VerificationRequest{
		RequestID: "req-2",
		DiscordID: "user-1",
		Status:    constants.RequestStatusPending,
		Method:    constants.VerifyMethodManual,
	}
	if err := repo.Create(request); err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	affected, err := repo.Finalize("req-2", constants.RequestStatusApproved, "mod-1", "looks good")
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	stored, err := repo.GetByRequestID("req-2")
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if stored == nil || stored.Status != constants.RequestStatusApproved {
		t.Fatalf("unexpected stored request: %+v", stored)
	}
	if stored.ReviewerID != "mod-1" || stored.ReviewerNote != "looks good" {
		t.Fatalf("reviewer fields not recorded: %+v", stored)
	}

	// 已终结的申请不可再次变更
	affected, err = repo.Finalize("req-2", constants.RequestStatusRejected, "mod-2", "")
	if err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows for finalized request, got %d", affected)
	}
	stored, err = repo.GetByRequestID("req-2")
	if err != nil {
		t.Fatalf("get request failed: %v", err)
	}
	if stored.Status != constants.RequestStatusApproved {
		t.Fatalf("terminal status mutated: %s", stored.Status)
	}

	// 不存在的申请同样返回 0 行
	affected, err = repo.Finalize("missing", constants.RequestStatusApproved, "mod-1", "")
	if err != nil {
		t.Fatalf("finalize missing failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected rows for missing request, got %d", affected)
	}
}

func TestGetByRequestIDMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerificationRequestRepository(db)

	record, err := repo.GetByRequestID("missing")
	if err != nil {
		t.Fatalf("get missing request failed: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for missing request, got %+v", record)
	}
}

func TestCountsAggregateByDiscordID(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerificationRequestRepository(db)

	seed := []struct {
		id     string
		user   string
		status string
	}{
		{"req-a", "user-1", constants.RequestStatusApproved},
		{"req-b", "user-1", constants.RequestStatusRejected},
		{"req-c", "user-1", constants.RequestStatusRejected},
		{"req-d", "user-2", constants.RequestStatusPending},
	}
	for _, item := range seed {
		err := repo.Create(&models.VerificationRequest{
			RequestID: item.id,
			DiscordID: item.user,
			Status:    item.status,
			Method:    constants.VerifyMethodManual,
		})
		if err != nil {
			t.Fatalf("seed request %s failed: %v", item.id, err)
		}
	}

	attempts, err := repo.CountByDiscordID("user-1")
	if err != nil {
		t.Fatalf("count attempts failed: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}

	failed, err := repo.CountRejectedByDiscordID("user-1")
	if err != nil {
		t.Fatalf("count rejected failed: %v", err)
	}
	if failed != 2 {
		t.Fatalf("expected 2 rejected, got %d", failed)
	}

	attempts, err = repo.CountByDiscordID("user-3")
	if err != nil {
		t.Fatalf("count attempts for unknown user failed: %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected 0 attempts for unknown user, got %d", attempts)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerificationRequestRepository(db)

	for i := 0; i < 5; i++ {
		status := constants.RequestStatusPending
		if i%2 == 1 {
			status = constants.RequestStatusApproved
		}
		err := repo.Create(&models.VerificationRequest{
			RequestID: fmt.Sprintf("req-%d", i),
			DiscordID: "user-1",
			Status:    status,
			Method:    constants.VerifyMethodManual,
		})
		if err != nil {
			t.Fatalf("seed request failed: %v", err)
		}
	}

	records, total, err := repo.List(RequestListFilter{Page: 1, PageSize: 10, Status: constants.RequestStatusPending})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(records) != 3 {
		t.Fatalf("expected 3 pending requests, got total=%d len=%d", total, len(records))
	}
	for _, record := range records {
		if record.Status != constants.RequestStatusPending {
			t.Fatalf("unexpected status in filtered list: %s", record.Status)
		}
	}
}

func TestVerifyCodeSaveOverwritesAndDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewVerifyCodeRepository(db)

	now := time.Now()
	first := &models.VerifyCode{
		DiscordID: "user-1",
		Code:      "123456",
		ExpiresAt: now.Add(5 * time.Minute),
		LastSent:  now,
	}
	if err := repo.Save(first); err != nil {
		t.Fatalf("save code failed: %v", err)
	}

	second := &models.VerifyCode{
		DiscordID: "user-1",
		Code:      "654321",
		ExpiresAt: now.Add(10 * time.Minute),
		LastSent:  now.Add(time.Minute),
	}
	if err := repo.Save(second); err != nil {
		t.Fatalf("overwrite code failed: %v", err)
	}

	stored, err := repo.GetByDiscordID("user-1")
	if err != nil {
		t.Fatalf("get code failed: %v", err)
	}
	if stored == nil || stored.Code != "654321" {
		t.Fatalf("expected overwritten code, got %+v", stored)
	}

	var count int64
	if err := db.Model(&models.VerifyCode{}).Where("discord_id = ?", "user-1").Count(&count).Error; err != nil {
		t.Fatalf("count codes failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single live code per user, got %d", count)
	}

	if err := repo.DeleteByDiscordID("user-1"); err != nil {
		t.Fatalf("delete code failed: %v", err)
	}
	stored, err = repo.GetByDiscordID("user-1")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if stored != nil {
		t.Fatalf("expected code removed, got %+v", stored)
	}

	// 再次删除不报错
	if err := repo.DeleteByDiscordID("user-1"); err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}
}
