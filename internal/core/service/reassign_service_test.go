package service

import (
	"context"
	"testing"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/core/testutil"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

func setupReassignTest(t *testing.T) (*ReassignService, *tenant.Context) {
	t.Helper()
	tc := testutil.SetupTenant(t)
	testutil.SeedUser(t, tc.DB, "pm-1", "PM One", "PROJECT_MANAGER")
	testutil.SeedUser(t, tc.DB, "pm-2", "PM Two", "PROJECT_MANAGER")
	testutil.SeedUser(t, tc.DB, "sale-1", "Sale One", "SALE")
	testutil.SeedProject(t, tc.DB, "prj-1", "pm-1")
	return NewReassignService(testutil.Logger()), tc
}

func strptr(s string) *string { return &s }

func TestReassignNothingChange(t *testing.T) {
	svc, tc := setupReassignTest(t)

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("pm-1"),
	})
	if !res.Status || res.Message != CodeNothingChange {
		t.Fatalf("Expected NOTHING_CHANGE, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestReassignUnknownUser(t *testing.T) {
	svc, tc := setupReassignTest(t)

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("no-such-user"),
	})
	if res.Status || res.Message != CodeUserNotFound {
		t.Fatalf("Expected USER_NOT_FOUND, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestReassignRoleMismatch(t *testing.T) {
	svc, tc := setupReassignTest(t)

	// sale-1 holds SALE, not PROJECT_MANAGER.
	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("sale-1"),
	})
	if res.Status || res.Message != CodeUserNotFound {
		t.Fatalf("Expected USER_NOT_FOUND on role mismatch, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestReassignDisabledUser(t *testing.T) {
	svc, tc := setupReassignTest(t)
	tc.DB.Model(&entity.User{}).Where("id = ?", "pm-2").Update("is_disabled", true)

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("pm-2"),
	})
	if res.Status || res.Message != CodeUserNotFound {
		t.Fatalf("Expected USER_NOT_FOUND for disabled user, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestReassignPreApprovalRepointsQuotationSlot(t *testing.T) {
	svc, tc := setupReassignTest(t)
	tc.DB.Model(&entity.Project{}).Where("id = ?", "prj-1").
		Update("quotation_status", entity.QuotationStatusWaitingApproval)

	slot := &entity.ProjectApprover{
		ID:        "qa-1",
		ProjectID: "prj-1",
		RoleKey:   role.KeyProjectManager,
		UserID:    strptr("pm-1"),
		Status:    entity.ApproverStatusWaitingApproval,
		Comment:   "looks fine",
	}
	if err := tc.DB.Create(slot).Error; err != nil {
		t.Fatalf("seed quotation slot: %v", err)
	}

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("pm-2"),
	})
	if !res.Status {
		t.Fatalf("reassign: %s", res.Message)
	}

	var project entity.Project
	tc.DB.Where("id = ?", "prj-1").First(&project)
	if project.ManageBy == nil || *project.ManageBy != "pm-2" {
		t.Errorf("Expected manage_by pm-2, got %v", project.ManageBy)
	}

	var after entity.ProjectApprover
	tc.DB.Where("id = ?", "qa-1").First(&after)
	if after.UserID == nil || *after.UserID != "pm-2" {
		t.Errorf("Expected quotation slot repointed to pm-2, got %v", after.UserID)
	}
	if after.Comment != "" {
		t.Errorf("Expected slot comment cleared, got %q", after.Comment)
	}
	if after.Status != entity.ApproverStatusWaitingApproval {
		t.Errorf("Expected slot status preserved, got %s", after.Status)
	}
}

func TestReassignPostApprovalRestartsPOSlots(t *testing.T) {
	svc, tc := setupReassignTest(t)

	po := &entity.ProjectPurchaseOrder{
		ID: "po-1", ProjectID: "prj-1", Code: "PO-1",
		Status: entity.POStatusWaitingApproval,
	}
	if err := tc.DB.Create(po).Error; err != nil {
		t.Fatalf("seed PO: %v", err)
	}

	pending := &entity.PurchaseOrderApprover{
		ID: "slot-pending", ProjectPurchaseOrderID: "po-1",
		RoleKey: role.KeyProjectManager, UserID: strptr("pm-1"),
		Status: entity.ApproverStatusRejected, Comment: "redo",
	}
	done := &entity.PurchaseOrderApprover{
		ID: "slot-done", ProjectPurchaseOrderID: "po-1",
		RoleKey: role.KeyProjectManager, UserID: strptr("pm-1"),
		Status: entity.ApproverStatusApproved,
	}
	if err := tc.DB.Create([]*entity.PurchaseOrderApprover{pending, done}).Error; err != nil {
		t.Fatalf("seed slots: %v", err)
	}

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ManageBy: strptr("pm-2"),
	})
	if !res.Status {
		t.Fatalf("reassign: %s", res.Message)
	}

	var after entity.PurchaseOrderApprover
	tc.DB.Where("id = ?", "slot-pending").First(&after)
	if after.UserID == nil || *after.UserID != "pm-2" {
		t.Errorf("Expected unapproved slot repointed to pm-2, got %v", after.UserID)
	}
	if after.Status != entity.ApproverStatusWaitingApproval || after.Comment != "" || after.ApprovedAt != nil {
		t.Errorf("Expected unapproved slot reset, got %s %q %v", after.Status, after.Comment, after.ApprovedAt)
	}

	// Approved decisions stay with the old PM.
	tc.DB.Where("id = ?", "slot-done").First(&after)
	if after.UserID == nil || *after.UserID != "pm-1" || after.Status != entity.ApproverStatusApproved {
		t.Errorf("Expected approved slot untouched, got %v %s", after.UserID, after.Status)
	}
}

func TestReassignClearConstructBy(t *testing.T) {
	svc, tc := setupReassignTest(t)
	testutil.SeedUser(t, tc.DB, "con-1", "Builder", "CONSTRUCTION")
	tc.DB.Model(&entity.Project{}).Where("id = ?", "prj-1").Update("construct_by", "con-1")

	res := svc.HandleChange(context.Background(), tc, "prj-1", ReassignRequest{
		ConstructBy: strptr(""),
	})
	if !res.Status {
		t.Fatalf("clear construct_by: %s", res.Message)
	}

	var project entity.Project
	tc.DB.Where("id = ?", "prj-1").First(&project)
	if project.ConstructBy != nil {
		t.Errorf("Expected construct_by cleared, got %v", *project.ConstructBy)
	}
}

func TestReassignUnknownProject(t *testing.T) {
	svc, tc := setupReassignTest(t)

	res := svc.HandleChange(context.Background(), tc, "no-such-project", ReassignRequest{
		ManageBy: strptr("pm-2"),
	})
	if res.Status || res.Message != CodeProjectInvalid {
		t.Fatalf("Expected PROJECT_INVALID, got status=%v message=%s", res.Status, res.Message)
	}
}
