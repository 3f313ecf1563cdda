package service

import (
	"errors"
	"testing"

	"github.com/khxzi/passport/internal/config"
	"github.com/khxzi/passport/internal/constants"
)

func newTestRequestService(requestRepo *stubRequestRepo, gateway *stubGateway, notifier *stubNotifier) *RequestService {
	return NewRequestService(&config.Config{}, requestRepo, gateway, notifier)
}

func TestCreateRequestStartsPending(t *testing.T) {
	requestRepo := newStubRequestRepo()
	notifier := &stubNotifier{}
	svc := newTestRequestService(requestRepo, newStubGateway(), notifier)

	request, err := svc.CreateRequest("user-1", "", "please verify me", []string{"proof.png"})
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if request.RequestID == "" {
		t.Fatal("expected generated request id")
	}
	if request.Status != constants.RequestStatusPending {
		t.Fatalf("expected pending status, got %s", request.Status)
	}
	if request.Method != constants.VerifyMethodManual {
		t.Fatalf("expected default manual method, got %s", request.Method)
	}
	files := request.AttachmentList()
	if len(files) != 1 || files[0] != "proof.png" {
		t.Fatalf("unexpected attachments: %v", files)
	}
	if len(notifier.reviewPanels) != 1 || notifier.reviewPanels[0] != request.RequestID {
		t.Fatalf("expected review panel enqueued, got %v", notifier.reviewPanels)
	}
}

func TestCreateRequestRequiresDiscordID(t *testing.T) {
	svc := newTestRequestService(newStubRequestRepo(), newStubGateway(), &stubNotifier{})
	if _, err := svc.CreateRequest("  ", "", "", nil); !errors.Is(err, ErrMissingDiscordID) {
		t.Fatalf("expected missing discord id error, got %v", err)
	}
}

func TestApproveRecordsReviewerAndGrantsRole(t *testing.T) {
	requestRepo := newStubRequestRepo()
	gateway := newStubGateway()
	notifier := &stubNotifier{}
	svc := newTestRequestService(requestRepo, gateway, notifier)

	request, err := svc.CreateRequest("user-1", "", "", nil)
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	approved, err := svc.Approve(request.RequestID, "mod-1", "checked in voice")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.RequestStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.ReviewerID != "mod-1" || approved.ReviewerNote != "checked in voice" {
		t.Fatalf("reviewer fields missing: %+v", approved)
	}
	if len(gateway.granted) != 1 || gateway.granted[0] != "user-1" {
		t.Fatalf("expected role grant, got %v", gateway.granted)
	}
	if len(notifier.outcomeDMs) != 1 || notifier.outcomeDMs[0] != "user-1:approved" {
		t.Fatalf("expected approved outcome DM, got %v", notifier.outcomeDMs)
	}
}

func TestRejectDoesNotGrantRole(t *testing.T) {
	requestRepo := newStubRequestRepo()
	gateway := newStubGateway()
	svc := newTestRequestService(requestRepo, gateway, &stubNotifier{})

	request, err := svc.CreateRequest("user-1", "", "", nil)
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}

	rejected, err := svc.Reject(request.RequestID, "mod-1", "no proof")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.RequestStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
	if len(gateway.granted) != 0 {
		t.Fatalf("reject must not grant roles, got %v", gateway.granted)
	}
}

func TestFinalizeTwiceReportsConflictWithoutMutation(t *testing.T) {
	requestRepo := newStubRequestRepo()
	svc := newTestRequestService(requestRepo, newStubGateway(), &stubNotifier{})

	request, err := svc.CreateRequest("user-1", "", "", nil)
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	if _, err := svc.Approve(request.RequestID, "mod-1", ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, err = svc.Reject(request.RequestID, "mod-2", "changed my mind")
	if !errors.Is(err, ErrRequestFinalized) {
		t.Fatalf("expected finalized error, got %v", err)
	}
	var finalized *RequestFinalizedError
	if !errors.As(err, &finalized) {
		t.Fatalf("expected RequestFinalizedError, got %T", err)
	}
	if finalized.Status != constants.RequestStatusApproved {
		t.Fatalf("conflict should name current status, got %s", finalized.Status)
	}

	stored, _ := requestRepo.GetByRequestID(request.RequestID)
	if stored.Status != constants.RequestStatusApproved || stored.ReviewerID != "mod-1" {
		t.Fatalf("terminal record mutated: %+v", stored)
	}
}

func TestFinalizeMissingRequest(t *testing.T) {
	svc := newTestRequestService(newStubRequestRepo(), newStubGateway(), &stubNotifier{})
	if _, err := svc.Approve("missing", "mod-1", ""); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRevokeSwapsRoles(t *testing.T) {
	gateway := newStubGateway()
	notifier := &stubNotifier{}
	svc := newTestRequestService(newStubRequestRepo(), gateway, notifier)

	if err := svc.Revoke("user-1", "mod-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if len(gateway.revoked) != 1 || gateway.revoked[0] != "user-1" {
		t.Fatalf("expected revoke call, got %v", gateway.revoked)
	}
	if len(notifier.auditLogs) != 1 || notifier.auditLogs[0] != "user-1:revoked" {
		t.Fatalf("expected revoke audit log, got %v", notifier.auditLogs)
	}
}

func TestRevokeSurfacesGatewayFailure(t *testing.T) {
	gateway := newStubGateway()
	gateway.revokeErr = errors.New("discord unavailable")
	svc := newTestRequestService(newStubRequestRepo(), gateway, &stubNotifier{})

	if err := svc.Revoke("user-1", "mod-1"); err == nil {
		t.Fatal("expected revoke failure to surface")
	}
}

func TestStatsCountsAttemptsAndRejections(t *testing.T) {
	requestRepo := newStubRequestRepo()
	svc := newTestRequestService(requestRepo, newStubGateway(), &stubNotifier{})

	first, _ := svc.CreateRequest("user-1", "", "", nil)
	second, _ := svc.CreateRequest("user-1", "", "", nil)
	if _, err := svc.Approve(first.RequestID, "mod-1", ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.Reject(second.RequestID, "mod-1", ""); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	stats, err := svc.Stats("user-1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Attempts != 2 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	stats, err = svc.Stats("user-2")
	if err != nil {
		t.Fatalf("stats for unknown user failed: %v", err)
	}
	if stats.Attempts != 0 || stats.Failed != 0 {
		t.Fatalf("expected zero stats for unknown user, got %+v", stats)
	}
}

func TestGetStatusMissingRequest(t *testing.T) {
	svc := newTestRequestService(newStubRequestRepo(), newStubGateway(), &stubNotifier{})
	if _, err := svc.GetStatus("missing"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
