package service

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"
	"github.com/khxzi/passport/internal/models"
	"github.com/khxzi/passport/internal/repository"
)

type stubCodeRepo struct {
	records map[string]*models.VerifyCode
	getErr  error
	saveErr error
}

func newStubCodeRepo() *stubCodeRepo {
	return &stubCodeRepo{records: make(map[string]*models.VerifyCode)}
}

func (r *stubCodeRepo) GetByDiscordID(discordID string) (*models.VerifyCode, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	record, ok := r.records[discordID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *stubCodeRepo) Save(code *models.VerifyCode) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *code
	r.records[code.DiscordID] = &clone
	return nil
}

func (r *stubCodeRepo) DeleteByDiscordID(discordID string) error {
	delete(r.records, discordID)
	return nil
}

type stubRequestRepo struct {
	records   map[string]*models.VerificationRequest
	createErr error
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{records: make(map[string]*models.VerificationRequest)}
}

func (r *stubRequestRepo) Create(request *models.VerificationRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.records[request.RequestID]; exists {
		return repository.ErrDuplicateRequestID
	}
	clone := *request
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.records[request.RequestID] = &clone
	return nil
}

func (r *stubRequestRepo) GetByRequestID(requestID string) (*models.VerificationRequest, error) {
	record, ok := r.records[requestID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *stubRequestRepo) List(filter repository.RequestListFilter) ([]models.VerificationRequest, int64, error) {
	results := make([]models.VerificationRequest, 0)
	for _, record := range r.records {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if filter.DiscordID != "" && record.DiscordID != filter.DiscordID {
			continue
		}
		results = append(results, *record)
	}
	return results, int64(len(results)), nil
}

func (r *stubRequestRepo) Finalize(requestID, status, reviewerID, reviewerNote string) (int64, error) {
	record, ok := r.records[requestID]
	if !ok || record.Status != constants.RequestStatusPending {
		return 0, nil
	}
	record.Status = status
	record.ReviewerID = reviewerID
	record.ReviewerNote = reviewerNote
	record.UpdatedAt = time.Now()
	return 1, nil
}

func (r *stubRequestRepo) UpdatePanelMessageID(requestID, messageID string) error {
	if record, ok := r.records[requestID]; ok {
		record.PanelMessageID = messageID
	}
	return nil
}

func (r *stubRequestRepo) CountByDiscordID(discordID string) (int64, error) {
	var count int64
	for _, record := range r.records {
		if record.DiscordID == discordID {
			count++
		}
	}
	return count, nil
}

func (r *stubRequestRepo) CountRejectedByDiscordID(discordID string) (int64, error) {
	var count int64
	for _, record := range r.records {
		if record.DiscordID == discordID && record.Status == constants.RequestStatusRejected {
			count++
		}
	}
	return count, nil
}

type stubGateway struct {
	sentCodes map[string]string
	granted   []string
	revoked   []string
	sendErr   error
	grantErr  error
	revokeErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{sentCodes: make(map[string]string)}
}

func (g *stubGateway) SendCodeDM(discordID, code string) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sentCodes[discordID] = code
	return nil
}

func (g *stubGateway) GrantVerified(discordID string) error {
	if g.grantErr != nil {
		return g.grantErr
	}
	g.granted = append(g.granted, discordID)
	return nil
}

func (g *stubGateway) RevokeVerified(discordID string) error {
	if g.revokeErr != nil {
		return g.revokeErr
	}
	g.revoked = append(g.revoked, discordID)
	return nil
}

type stubNotifier struct {
	outcomeDMs   []string
	reviewPanels []string
	auditLogs    []string
}

func (n *stubNotifier) EnqueueOutcomeDM(discordID, outcome, note string) error {
	n.outcomeDMs = append(n.outcomeDMs, discordID+":"+outcome)
	return nil
}

func (n *stubNotifier) EnqueueReviewPanel(requestID string) error {
	n.reviewPanels = append(n.reviewPanels, requestID)
	return nil
}

func (n *stubNotifier) EnqueueAuditLog(discordID, outcome, reviewerID string) error {
	n.auditLogs = append(n.auditLogs, discordID+":"+outcome)
	return nil
}

func newTestVerifyService(codeRepo *stubCodeRepo, requestRepo *stubRequestRepo, gateway *stubGateway, notifier *stubNotifier) *VerifyService {
	cfg := &config.Config{
		VerifyCode: config.VerifyCodeConfig{
			ExpireSeconds:       300,
			SendIntervalSeconds: 60,
		},
	}
	return NewVerifyService(cfg, codeRepo, requestRepo, gateway, notifier)
}

func TestIssueCodeStoresAndDeliversSixDigitCode(t *testing.T) {
	codeRepo := newStubCodeRepo()
	gateway := newStubGateway()
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), gateway, &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }

	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}

	stored := codeRepo.records["user-1"]
	if stored == nil {
		t.Fatal("expected code to be stored")
	}
	if len(stored.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", stored.Code)
	}
	value, err := strconv.Atoi(stored.Code)
	if err != nil || value < 100000 || value > 999999 {
		t.Fatalf("code out of range: %q", stored.Code)
	}
	if gateway.sentCodes["user-1"] != stored.Code {
		t.Fatalf("delivered code %q does not match stored %q", gateway.sentCodes["user-1"], stored.Code)
	}
	if !stored.ExpiresAt.Equal(base.Add(300 * time.Second)) {
		t.Fatalf("unexpected expiry: %v", stored.ExpiresAt)
	}
	if !stored.LastSent.Equal(base) {
		t.Fatalf("unexpected last sent: %v", stored.LastSent)
	}
}

func TestIssueCodeCooldownReportsRemainingSeconds(t *testing.T) {
	codeRepo := newStubCodeRepo()
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), newStubGateway(), &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}

	svc.now = func() time.Time { return base.Add(10 * time.Second) }
	err := svc.IssueCode("user-1")
	if !errors.Is(err, ErrCodeCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("expected CooldownError, got %T", err)
	}
	if cooldown.RemainingSeconds != 50 {
		t.Fatalf("expected 50 remaining seconds, got %d", cooldown.RemainingSeconds)
	}
}

func TestIssueCodeAfterCooldownOverwritesPreviousCode(t *testing.T) {
	codeRepo := newStubCodeRepo()
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), newStubGateway(), &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	first := codeRepo.records["user-1"].Code

	svc.now = func() time.Time { return base.Add(61 * time.Second) }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("second issue failed: %v", err)
	}

	second := codeRepo.records["user-1"]
	if !second.LastSent.Equal(base.Add(61 * time.Second)) {
		t.Fatalf("last sent not refreshed: %v", second.LastSent)
	}
	if !second.ExpiresAt.Equal(base.Add(61*time.Second + 300*time.Second)) {
		t.Fatalf("expiry not refreshed: %v", second.ExpiresAt)
	}
	// 旧验证码被整行覆盖，仅新码有效
	if second.Code == first {
		t.Log("new code happened to equal previous code; both map to the same stored row")
	}
}

func TestIssueCodeDeliveryFailureRollsBackStoredCode(t *testing.T) {
	codeRepo := newStubCodeRepo()
	gateway := newStubGateway()
	gateway.sendErr = errors.New("dm blocked")
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), gateway, &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }

	err := svc.IssueCode("user-1")
	if !errors.Is(err, ErrCodeDelivery) {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if _, exists := codeRepo.records["user-1"]; exists {
		t.Fatal("expected stored code to be rolled back")
	}

	// 回滚后立刻重试不应被冷却窗口拦截
	gateway.sendErr = nil
	svc.now = func() time.Time { return base.Add(time.Second) }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("retry after rollback failed: %v", err)
	}
}

func TestCheckCodeConsumesSingleUse(t *testing.T) {
	codeRepo := newStubCodeRepo()
	requestRepo := newStubRequestRepo()
	gateway := newStubGateway()
	notifier := &stubNotifier{}
	svc := newTestVerifyService(codeRepo, requestRepo, gateway, notifier)

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	code := codeRepo.records["user-1"].Code

	if err := svc.CheckCode("user-1", code); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if _, exists := codeRepo.records["user-1"]; exists {
		t.Fatal("expected code to be consumed")
	}
	if len(gateway.granted) != 1 || gateway.granted[0] != "user-1" {
		t.Fatalf("expected role grant for user-1, got %v", gateway.granted)
	}

	var approved *models.VerificationRequest
	for _, record := range requestRepo.records {
		approved = record
	}
	if approved == nil {
		t.Fatal("expected an approved verification record")
	}
	if approved.Status != constants.RequestStatusApproved || approved.Method != constants.VerifyMethodCode {
		t.Fatalf("unexpected record: %+v", approved)
	}
	if len(notifier.outcomeDMs) != 1 {
		t.Fatalf("expected outcome DM enqueued, got %v", notifier.outcomeDMs)
	}

	// 同一验证码不可复用
	if err := svc.CheckCode("user-1", code); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected code not found on reuse, got %v", err)
	}
}

func TestCheckCodeExpiredKeepsRecord(t *testing.T) {
	codeRepo := newStubCodeRepo()
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), newStubGateway(), &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	code := codeRepo.records["user-1"].Code

	svc.now = func() time.Time { return base.Add(301 * time.Second) }
	if err := svc.CheckCode("user-1", code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	if _, exists := codeRepo.records["user-1"]; !exists {
		t.Fatal("expired record should be kept until overwritten")
	}
}

func TestCheckCodeMismatchKeepsRecord(t *testing.T) {
	codeRepo := newStubCodeRepo()
	svc := newTestVerifyService(codeRepo, newStubRequestRepo(), newStubGateway(), &stubNotifier{})

	base := time.Now()
	svc.now = func() time.Time { return base }
	if err := svc.IssueCode("user-1"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if err := svc.CheckCode("user-1", "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if _, exists := codeRepo.records["user-1"]; !exists {
		t.Fatal("record should survive a mismatch")
	}
}

func TestCheckCodeWithoutRecord(t *testing.T) {
	svc := newTestVerifyService(newStubCodeRepo(), newStubRequestRepo(), newStubGateway(), &stubNotifier{})
	if err := svc.CheckCode("user-1", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected code not found, got %v", err)
	}
}

func TestRandomVerifyCodeStaysInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := randomVerifyCode()
		if err != nil {
			t.Fatalf("generate code failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		value, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non-numeric code %q", code)
		}
		if value < 100000 || value > 999999 {
			t.Fatalf("code out of range: %d", value)
		}
	}
}
