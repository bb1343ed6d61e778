package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// WaitingService is the read-only dashboard aggregator: per actor role, how
// many items across the subsystems are waiting for their decision.
type WaitingService struct {
	log *zap.Logger
}

func NewWaitingService(log *zap.Logger) *WaitingService {
	return &WaitingService{log: log}
}

// WaitingActions is a sparse result: only the counts relevant to the caller's
// role are populated.
type WaitingActions struct {
	CostModifications  *int64 `json:"cost_modifications,omitempty"`
	QuotationApprovals *int64 `json:"quotation_approvals,omitempty"`
	PurchaseOrders     *int64 `json:"purchase_orders,omitempty"`
	VariationOrders    *int64 `json:"variation_orders,omitempty"`
	Receivables        *int64 `json:"receivables,omitempty"`
	Payables           *int64 `json:"payables,omitempty"`
	PaymentPlans       *int64 `json:"payment_plans,omitempty"`
}

// Collect issues the per-role count queries for one project. No writes, no
// transaction.
func (s *WaitingService) Collect(ctx context.Context, tc *tenant.Context, actor *role.Actor, projectID string) (WaitingActions, error) {
	db := tc.DB.WithContext(ctx)
	cap := actor.Cap()
	var actions WaitingActions

	if cap.IsProcurementManager || cap.IsCEO {
		var n int64
		if err := db.Model(&entity.ProjectCostModification{}).
			Where("project_id = ? AND status = ?", projectID, entity.CostModificationStatusWaiting).
			Count(&n).Error; err != nil {
			return actions, err
		}
		actions.CostModifications = &n
	}

	if cap.IsPM || cap.IsSale {
		var n int64
		if err := db.Model(&entity.ProjectApprover{}).
			Where("project_id = ? AND user_id = ? AND status = ?",
				projectID, actor.ID, entity.ApproverStatusWaitingApproval).
			Count(&n).Error; err != nil {
			return actions, err
		}
		actions.QuotationApprovals = &n
	}

	// PO and VO slots are role-bound; an unclaimed slot counts for anyone
	// holding the role.
	{
		var n int64
		if err := db.Model(&entity.PurchaseOrderApprover{}).
			Where("role_key = ? AND status = ? AND project_purchase_order_id IN (?)",
				actor.RoleKey,
				entity.ApproverStatusWaitingApproval,
				db.Session(&gorm.Session{NewDB: true}).Model(&entity.ProjectPurchaseOrder{}).
					Select("id").
					Where("project_id = ? AND status IN ?", projectID,
						[]string{entity.POStatusWaitingApproval, entity.POStatusModified}),
			).
			Count(&n).Error; err != nil {
			return actions, err
		}
		if n > 0 {
			actions.PurchaseOrders = &n
		}
	}

	{
		var n int64
		if err := db.Model(&entity.VOApprover{}).
			Where("role_key = ? AND status = ? AND project_vo_id IN (?)",
				actor.RoleKey,
				entity.ApproverStatusWaitingApproval,
				db.Session(&gorm.Session{NewDB: true}).Model(&entity.ProjectVO{}).
					Select("id").
					Where("project_id = ? AND status = ?", projectID, entity.VOStatusWaitingApproval),
			).
			Count(&n).Error; err != nil {
			return actions, err
		}
		if n > 0 {
			actions.VariationOrders = &n
		}
	}

	if cap.IsCFO || cap.IsLiabilitiesAccountant {
		var receivables int64
		if err := db.Model(&entity.ProjectBillPlan{}).
			Where("project_id = ? AND status <> ? AND target_date IS NOT NULL AND target_date <= ?",
				projectID, entity.PlanStatusPaid, time.Now()).
			Count(&receivables).Error; err != nil {
			return actions, err
		}
		actions.Receivables = &receivables

		var payables int64
		if err := db.Model(&entity.ProjectPaymentPlan{}).
			Where("project_id = ? AND status = ?", projectID, entity.PlanStatusWaitingApproval).
			Count(&payables).Error; err != nil {
			return actions, err
		}
		actions.Payables = &payables
	}

	if cap.IsCFO {
		var n int64
		if err := db.Model(&entity.ProjectPaymentApprover{}).
			Where("role_key = ? AND status = ? AND project_payment_plan_id IN (?)",
				actor.RoleKey,
				entity.ApproverStatusWaitingApproval,
				db.Session(&gorm.Session{NewDB: true}).Model(&entity.ProjectPaymentPlan{}).
					Select("id").
					Where("project_id = ?", projectID),
			).
			Count(&n).Error; err != nil {
			return actions, err
		}
		actions.PaymentPlans = &n
	}

	return actions, nil
}
