package service

import (
	"context"
	"math"
	"testing"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/testutil"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

func setupCostTest(t *testing.T) (*CostService, *tenant.Context) {
	t.Helper()
	tc := testutil.SetupTenant(t)
	testutil.SeedUser(t, tc.DB, "pm-1", "PM One", "PROJECT_MANAGER")
	testutil.SeedUser(t, tc.DB, "qs-1", "QS One", "QS")
	testutil.SeedUser(t, tc.DB, "procmgr-1", "Proc Manager", "PROCUREMENT_MANAGER")
	testutil.SeedProject(t, tc.DB, "prj-1", "pm-1")
	return NewCostService(testutil.Logger()), tc
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSumPlainItem(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	summary, err := svc.SumProjectCost(context.Background(), tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !approxEqual(summary.Base, 50) {
		t.Errorf("Expected base 50, got %v", summary.Base)
	}
	if !approxEqual(summary.Modified, 50) {
		t.Errorf("Expected modified 50, got %v", summary.Modified)
	}
	if !approxEqual(summary.NoPO, 50) {
		t.Errorf("Expected no_po 50, got %v", summary.NoPO)
	}
	if summary.HasPO != 0 {
		t.Errorf("Expected has_po 0, got %v", summary.HasPO)
	}
}

func TestSumPODiscountThenVat(t *testing.T) {
	svc, tc := setupCostTest(t)

	po := &entity.ProjectPurchaseOrder{
		ID:             "po-1",
		ProjectID:      "prj-1",
		Code:           "PO-1",
		Status:         entity.POStatusApproved,
		DiscountType:   entity.DiscountTypePercent,
		DiscountAmount: 10,
		VatPercent:     8,
	}
	if err := tc.DB.Create(po).Error; err != nil {
		t.Fatalf("seed PO: %v", err)
	}

	item := testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 20, 3)
	tc.DB.Model(item).Update("project_purchase_order_id", "po-1")

	summary, err := svc.SumProjectCost(context.Background(), tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	// 60 subtotal, minus 10% discount = 54, plus 8% VAT = 58.32
	if !approxEqual(summary.HasPO, 58.32) {
		t.Errorf("Expected has_po 58.32, got %v", summary.HasPO)
	}
	if summary.NoPO != 0 {
		t.Errorf("Expected no_po 0, got %v", summary.NoPO)
	}
}

// The baseline accumulation sums VO-linked items signed and plain items
// unsigned, with backed-up values taking precedence. This pins the exact
// historical arithmetic.
func TestBaseAccumulationRegression(t *testing.T) {
	svc, tc := setupCostTest(t)
	db := tc.DB

	voApproved := &entity.ProjectVO{ID: "vo-app", ProjectID: "prj-1", Code: "VO-1", Status: entity.VOStatusApproved}
	voPending := &entity.ProjectVO{ID: "vo-pend", ProjectID: "prj-1", Code: "VO-2", Status: entity.VOStatusWaitingApproval}
	if err := db.Create([]*entity.ProjectVO{voApproved, voPending}).Error; err != nil {
		t.Fatalf("seed VOs: %v", err)
	}

	// Plain item with a backup snapshot: base uses bk values (3*8=24), current
	// uses live values (5*10=50).
	bkAmount, bkPrice := 3.0, 8.0
	item := testutil.SeedCostItem(t, tc.DB, "item-plain", "prj-1", 5, 10)
	db.Model(item).Updates(map[string]interface{}{"bk_amount": bkAmount, "bk_price": bkPrice})

	// VO-added item, VO approved: +2*6=12 in base, 12 in current.
	added := testutil.SeedCostItem(t, tc.DB, "item-voadd", "prj-1", 2, 6)
	db.Model(added).Update("vo_add_id", "vo-app")

	// VO-removed item, VO approved: -4*5=-20 in base, dropped from current.
	removed := testutil.SeedCostItem(t, tc.DB, "item-vodel", "prj-1", 4, 5)
	db.Model(removed).Update("vo_delete_id", "vo-app")

	// VO-added item, VO still pending: +1*7=7 in base, dropped from current.
	pending := testutil.SeedCostItem(t, tc.DB, "item-vopend", "prj-1", 1, 7)
	db.Model(pending).Update("vo_add_id", "vo-pend")

	summary, err := svc.SumProjectCost(context.Background(), tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}

	// base = (12 - 20 + 7) + 24 = 23
	if !approxEqual(summary.Base, 23) {
		t.Errorf("Expected base 23, got %v", summary.Base)
	}
	// modified = 50 (plain, live values) + 12 (approved addition) = 62
	if !approxEqual(summary.Modified, 62) {
		t.Errorf("Expected modified 62, got %v", summary.Modified)
	}
}

func TestSumSkipsParentRows(t *testing.T) {
	svc, tc := setupCostTest(t)

	parent := testutil.SeedCostItem(t, tc.DB, "item-parent", "prj-1", 100, 100)
	tc.DB.Model(parent).Update("is_parent", true)
	testutil.SeedCostItem(t, tc.DB, "item-child", "prj-1", 2, 5)

	summary, err := svc.SumProjectCost(context.Background(), tc, nil, "prj-1")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !approxEqual(summary.Modified, 10) {
		t.Errorf("Expected modified 10 with parent excluded, got %v", summary.Modified)
	}
}

func TestModifyNoChange(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	res := svc.Modify(context.Background(), tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      5,
	})
	if res.Status || res.Message != CodeProjectCostItemNoChange {
		t.Fatalf("Expected PROJECT_COST_ITEM_NO_CHANGE, got status=%v message=%s", res.Status, res.Message)
	}

	var count int64
	tc.DB.Model(&entity.ProjectCostModification{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no modification rows, got %d", count)
	}
}

func TestModifyMissingItem(t *testing.T) {
	svc, tc := setupCostTest(t)

	res := svc.Modify(context.Background(), tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "no-such-item",
		Amount:     1,
		Price:      1,
	})
	if res.Status || res.Message != CodeProjectCostItemInvalid {
		t.Fatalf("Expected PROJECT_COST_ITEM_INVALID, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestModifySingleWaitingGuard(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)
	ctx := context.Background()
	actor := testutil.Actor("qs-1", "QS")

	// 50 → 100 doubles the item; over the 10% item threshold, so it parks.
	res := svc.Modify(ctx, tc, actor, ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      10,
	})
	if !res.Status {
		t.Fatalf("Expected proposal to be accepted, got %s", res.Message)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}
	if mod.Status != entity.CostModificationStatusWaiting {
		t.Fatalf("Expected WAITING modification, got %s", mod.Status)
	}

	// A second proposal on the same item is blocked while one is pending.
	res = svc.Modify(ctx, tc, actor, ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      20,
	})
	if res.Status || res.Message != CodeCostModificationIsWaiting {
		t.Fatalf("Expected PROJECT_COST_MODIFICATION_IS_WAITING, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestModifyWithinThresholdsAppliesForOrdinaryActor(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	// 50 → 54: under the 10% item threshold (5) and the 10% project total
	// allowance, so an ordinary actor's change applies on the spot.
	res := svc.Modify(context.Background(), tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      5.4,
	})
	if !res.Status {
		t.Fatalf("Expected immediate apply, got %s", res.Message)
	}

	var item entity.ProjectCostItem
	if err := tc.DB.Where("id = ?", "item-1").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if !approxEqual(item.Price, 5.4) {
		t.Errorf("Expected price 5.4 applied, got %v", item.Price)
	}
	if item.BkAmount == nil || *item.BkAmount != 10 || item.BkPrice == nil || *item.BkPrice != 5 {
		t.Errorf("Expected backup 10/5, got %v/%v", item.BkAmount, item.BkPrice)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}
	if mod.Status != entity.CostModificationStatusValid {
		t.Errorf("Expected VALID modification, got %s", mod.Status)
	}
}

func TestModifyTotalFeeExceededParksWaiting(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	// A previously modified sibling has already eaten into the project
	// allowance: base 50 from its backup, live 60.
	other := testutil.SeedCostItem(t, tc.DB, "item-2", "prj-1", 10, 6)
	tc.DB.Model(other).Updates(map[string]interface{}{"bk_amount": 10.0, "bk_price": 5.0})

	// 50 → 54 passes the per-item threshold (4 of 5) but lifts the project
	// overrun to 14 against a total allowance of 10 (base 100 at 10%).
	res := svc.Modify(context.Background(), tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      5.4,
	})
	if !res.Status {
		t.Fatalf("Expected proposal to be accepted, got %s", res.Message)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}
	if mod.Status != entity.CostModificationStatusWaiting {
		t.Fatalf("Expected WAITING modification, got %s", mod.Status)
	}

	var item entity.ProjectCostItem
	tc.DB.Where("id = ?", "item-1").First(&item)
	if item.Price != 5 || item.BkPrice != nil {
		t.Errorf("Expected item untouched while parked, got price=%v bk=%v", item.Price, item.BkPrice)
	}
}

func TestModifyExtraItemWithoutBackupTreatedAsNew(t *testing.T) {
	costSvc, tc := setupCostTest(t)
	resolver := NewModificationApprovalService(testutil.Logger())
	ctx := context.Background()

	item := testutil.SeedCostItem(t, tc.DB, "item-x", "prj-1", 10, 5)
	tc.DB.Model(item).Update("is_extra", true)

	// A decrease on an old item would apply immediately; a never backed-up
	// extra item counts as new regardless of the request flag and parks.
	res := costSvc.Modify(ctx, tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-x",
		Amount:     2,
		Price:      4,
		IsNewCost:  false,
	})
	if !res.Status {
		t.Fatalf("Expected proposal to be accepted, got %s", res.Message)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-x").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}
	if mod.Status != entity.CostModificationStatusWaiting || !mod.IsNewItem {
		t.Fatalf("Expected WAITING new-item modification, got status=%s is_new=%v", mod.Status, mod.IsNewItem)
	}

	if res := resolver.Resolve(ctx, tc, testutil.Actor("procmgr-1", "PROCUREMENT_MANAGER"), mod.ID, ApproverDecision{
		Status: entity.ApproverStatusApproved,
	}); !res.Status {
		t.Fatalf("resolve: %s", res.Message)
	}

	var after entity.ProjectCostItem
	tc.DB.Where("id = ?", "item-x").First(&after)
	if after.Amount != 2 || after.Price != 4 {
		t.Errorf("Expected 2/4 applied on approval, got %v/%v", after.Amount, after.Price)
	}
	// New items keep no backup: there is no original to restore.
	if after.BkAmount != nil || after.BkPrice != nil {
		t.Errorf("Expected no backup on a new item, got %v/%v", after.BkAmount, after.BkPrice)
	}
}

func TestModifyProcurementManagerAppliesImmediately(t *testing.T) {
	svc, tc := setupCostTest(t)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	res := svc.Modify(context.Background(), tc, testutil.Actor("procmgr-1", "PROCUREMENT_MANAGER"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      20,
	})
	if !res.Status {
		t.Fatalf("Expected immediate apply, got %s", res.Message)
	}

	var item entity.ProjectCostItem
	if err := tc.DB.Where("id = ?", "item-1").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.Price != 20 {
		t.Errorf("Expected price 20 applied, got %v", item.Price)
	}
	// First change snapshots the original values.
	if item.BkAmount == nil || *item.BkAmount != 10 || item.BkPrice == nil || *item.BkPrice != 5 {
		t.Errorf("Expected backup 10/5, got %v/%v", item.BkAmount, item.BkPrice)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}
	if mod.Status != entity.CostModificationStatusValid {
		t.Errorf("Expected VALID modification, got %s", mod.Status)
	}
}

func TestModifyRequiresApprovedQuotation(t *testing.T) {
	svc, tc := setupCostTest(t)
	tc.DB.Model(&entity.Project{}).Where("id = ?", "prj-1").
		Update("quotation_status", entity.QuotationStatusProcessing)
	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)

	res := svc.Modify(context.Background(), tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      6,
	})
	if res.Status || res.Message != CodeProjectInvalid {
		t.Fatalf("Expected PROJECT_INVALID, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestResolveWaitingModification(t *testing.T) {
	costSvc, tc := setupCostTest(t)
	resolver := NewModificationApprovalService(testutil.Logger())
	ctx := context.Background()

	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)
	res := costSvc.Modify(ctx, tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1",
		Amount:     10,
		Price:      10,
	})
	if !res.Status {
		t.Fatalf("seed waiting modification: %s", res.Message)
	}

	var mod entity.ProjectCostModification
	if err := tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod).Error; err != nil {
		t.Fatalf("load modification: %v", err)
	}

	res = resolver.Resolve(ctx, tc, testutil.Actor("procmgr-1", "PROCUREMENT_MANAGER"), mod.ID, ApproverDecision{
		Status: entity.ApproverStatusApproved,
	})
	if !res.Status {
		t.Fatalf("Expected resolve to succeed, got %s", res.Message)
	}

	var item entity.ProjectCostItem
	tc.DB.Where("id = ?", "item-1").First(&item)
	if item.Price != 10 {
		t.Errorf("Expected price 10 applied on approval, got %v", item.Price)
	}

	// Resolving twice is invalid.
	res = resolver.Resolve(ctx, tc, testutil.Actor("procmgr-1", "PROCUREMENT_MANAGER"), mod.ID, ApproverDecision{
		Status: entity.ApproverStatusApproved,
	})
	if res.Status || res.Message != CodeCostModificationInvalid {
		t.Fatalf("Expected COST_MODIFICATION_INVALID, got status=%v message=%s", res.Status, res.Message)
	}
}

func TestRejectWaitingModificationLeavesItem(t *testing.T) {
	costSvc, tc := setupCostTest(t)
	resolver := NewModificationApprovalService(testutil.Logger())
	ctx := context.Background()

	testutil.SeedCostItem(t, tc.DB, "item-1", "prj-1", 10, 5)
	if res := costSvc.Modify(ctx, tc, testutil.Actor("qs-1", "QS"), ModifyCostItemRequest{
		CostItemID: "item-1", Amount: 10, Price: 10,
	}); !res.Status {
		t.Fatalf("seed waiting modification: %s", res.Message)
	}

	var mod entity.ProjectCostModification
	tc.DB.Where("project_cost_item_id = ?", "item-1").First(&mod)

	res := resolver.Resolve(ctx, tc, testutil.Actor("procmgr-1", "PROCUREMENT_MANAGER"), mod.ID, ApproverDecision{
		Status:  entity.ApproverStatusRejected,
		Comment: "price not justified",
	})
	if !res.Status {
		t.Fatalf("Expected reject to succeed, got %s", res.Message)
	}

	var item entity.ProjectCostItem
	tc.DB.Where("id = ?", "item-1").First(&item)
	if item.Price != 5 || item.BkPrice != nil {
		t.Errorf("Expected item untouched after rejection, got price=%v bk=%v", item.Price, item.BkPrice)
	}

	tc.DB.Where("id = ?", mod.ID).First(&mod)
	if mod.Status != entity.CostModificationStatusRejected || mod.Comment != "price not justified" {
		t.Errorf("Expected REJECTED with comment, got %s %q", mod.Status, mod.Comment)
	}
}
