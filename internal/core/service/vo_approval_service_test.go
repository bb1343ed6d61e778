package service

import (
	"context"
	"testing"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/core/testutil"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

func setupVOTest(t *testing.T) (*VOApprovalService, *tenant.Context) {
	t.Helper()
	tc := testutil.SetupTenant(t)
	testutil.SeedUser(t, tc.DB, "pm-1", "PM One", "PROJECT_MANAGER")
	testutil.SeedUser(t, tc.DB, "ceo-1", "CEO", "CEO")
	testutil.SeedProject(t, tc.DB, "prj-1", "pm-1")

	vo := &entity.ProjectVO{
		ID: "vo-1", ProjectID: "prj-1", Code: "VO-1",
		Status: entity.VOStatusWaitingApproval,
	}
	if err := tc.DB.Create(vo).Error; err != nil {
		t.Fatalf("seed VO: %v", err)
	}
	slots := []entity.VOApprover{
		{ID: "vo-slot-pm", ProjectVOID: "vo-1", RoleKey: role.KeyProjectManager, Status: entity.ApproverStatusWaitingApproval},
		{ID: "vo-slot-ceo", ProjectVOID: "vo-1", RoleKey: role.KeyCEO, Status: entity.ApproverStatusWaitingApproval},
	}
	if err := tc.DB.Create(&slots).Error; err != nil {
		t.Fatalf("seed slots: %v", err)
	}
	return NewVOApprovalService(testutil.Logger()), tc
}

func voStatus(t *testing.T, tc *tenant.Context) string {
	t.Helper()
	var vo entity.ProjectVO
	if err := tc.DB.Where("id = ?", "vo-1").First(&vo).Error; err != nil {
		t.Fatalf("load VO: %v", err)
	}
	return vo.Status
}

func TestVOFullApprovalFlipsLedger(t *testing.T) {
	svc, tc := setupVOTest(t)
	ctx := context.Background()

	// An item this VO adds is invisible to the ledger until approval.
	item := testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 2, 50)
	tc.DB.Model(item).Update("vo_add_id", "vo-1")

	costSvc := NewCostService(testutil.Logger())
	before, err := costSvc.SumProjectCost(ctx, tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if before.Modified != 0 {
		t.Fatalf("Expected pending VO item excluded, got modified %v", before.Modified)
	}

	if res := svc.UpdateApprover(ctx, tc, testutil.Actor("pm-1", "PROJECT_MANAGER"), "vo-slot-pm", ApproverDecision{
		Status: entity.ApproverStatusApproved,
	}); !res.Status {
		t.Fatalf("PM approval: %s", res.Message)
	}
	if got := voStatus(t, tc); got != entity.VOStatusWaitingApproval {
		t.Fatalf("Expected VO still WAITING_APPROVAL, got %s", got)
	}

	if res := svc.UpdateApprover(ctx, tc, testutil.Actor("ceo-1", "CEO"), "vo-slot-ceo", ApproverDecision{
		Status: entity.ApproverStatusApproved,
	}); !res.Status {
		t.Fatalf("CEO approval: %s", res.Message)
	}
	if got := voStatus(t, tc); got != entity.VOStatusApproved {
		t.Fatalf("Expected VO APPROVED, got %s", got)
	}

	after, err := costSvc.SumProjectCost(ctx, tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if after.Modified != 100 {
		t.Fatalf("Expected approved VO item counted (100), got %v", after.Modified)
	}
}

func TestVORejectionFailsOrder(t *testing.T) {
	svc, tc := setupVOTest(t)

	res := svc.UpdateApprover(context.Background(), tc, testutil.Actor("ceo-1", "CEO"), "vo-slot-ceo", ApproverDecision{
		Status: entity.ApproverStatusRejected,
	})
	if !res.Status {
		t.Fatalf("rejection: %s", res.Message)
	}
	if got := voStatus(t, tc); got != entity.VOStatusRejected {
		t.Fatalf("Expected VO REJECTED, got %s", got)
	}
}

func TestVOApproverUnknownSlot(t *testing.T) {
	svc, tc := setupVOTest(t)

	res := svc.UpdateApprover(context.Background(), tc, testutil.Actor("ceo-1", "CEO"), "no-such-slot", ApproverDecision{
		Status: entity.ApproverStatusApproved,
	})
	if res.Status || res.Message != CodeVOApproverInvalid {
		t.Fatalf("Expected VO_APPROVER_INVALID, got status=%v message=%s", res.Status, res.Message)
	}
}
