package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// POApprovalService drives the purchase order approval chain: every slot must
// approve for the order to pass, a single rejection fails it immediately, and
// a fully approved MODIFIED order replays its pending edit snapshot onto the
// cost items.
type POApprovalService struct {
	log *zap.Logger
}

func NewPOApprovalService(log *zap.Logger) *POApprovalService {
	return &POApprovalService{log: log}
}

type ApproverDecision struct {
	Status  string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Comment string `json:"comment"`
}

// claimable reports whether an approver slot can accept a decision from the
// actor: the slot is unresolved, or already bound to the caller, and the
// caller holds the slot's role.
func claimable(slotStatus string, slotUser *string, slotRole string, actor *role.Actor) bool {
	if actor == nil || slotRole != actor.RoleKey {
		return false
	}
	if slotStatus == entity.ApproverStatusWaitingApproval {
		return true
	}
	return slotUser != nil && *slotUser == actor.ID
}

// UpdateApprover records one approver decision and advances the purchase
// order state machine.
func (s *POApprovalService) UpdateApprover(ctx context.Context, tc *tenant.Context, actor *role.Actor, approverID string, decision ApproverDecision) Result {
	return runTx(ctx, tc, s.log, CodeUpdatePOApproverSuccess, CodeUpdatePOApproverFail, func(tx *gorm.DB) error {
		var slot entity.PurchaseOrderApprover
		if err := tx.Where("id = ?", approverID).Preload("PurchaseOrder").First(&slot).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodePOApproverInvalid)
			}
			return fmt.Errorf("load approver: %w", err)
		}

		po := slot.PurchaseOrder
		if po == nil {
			return reject(CodePOApproverInvalid)
		}
		if !claimable(slot.Status, slot.UserID, slot.RoleKey, actor) {
			return reject(CodePOApproverInvalid)
		}
		switch po.Status {
		case entity.POStatusRejected, entity.POStatusWaitingApproval, entity.POStatusModified:
		default:
			return reject(CodePOApproverInvalid)
		}

		now := time.Now()
		if err := tx.Model(&entity.PurchaseOrderApprover{}).
			Where("id = ?", slot.ID).
			Updates(map[string]interface{}{
				"user_id":     actor.ID,
				"status":      decision.Status,
				"comment":     decision.Comment,
				"approved_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return fmt.Errorf("record decision: %w", err)
		}

		// One rejection fails the order outright, except inside a
		// modification round where the snapshot must stay replayable.
		if decision.Status == entity.ApproverStatusRejected {
			if po.Status != entity.POStatusModified {
				if err := setPOStatus(tx, po.ID, entity.POStatusRejected); err != nil {
					return err
				}
			}
			return nil
		}

		var slots []entity.PurchaseOrderApprover
		if err := tx.Where("project_purchase_order_id = ?", po.ID).Find(&slots).Error; err != nil {
			return fmt.Errorf("load approver slots: %w", err)
		}

		// Approval cannot land while a cost change on this order is pending.
		var pendingMods int64
		if err := tx.Model(&entity.ProjectCostModification{}).
			Where("status = ? AND project_cost_item_id IN (?)",
				entity.CostModificationStatusWaiting,
				tx.Model(&entity.ProjectCostItem{}).
					Select("id").
					Where("project_purchase_order_id = ?", po.ID),
			).
			Count(&pendingMods).Error; err != nil {
			return fmt.Errorf("count pending modifications: %w", err)
		}
		if pendingMods > 0 {
			return reject(CodePOHasCostModificationItems)
		}

		allApproved := true
		anyRejected := false
		for _, sl := range slots {
			if sl.Status != entity.ApproverStatusApproved {
				allApproved = false
			}
			if sl.Status == entity.ApproverStatusRejected {
				anyRejected = true
			}
		}

		if allApproved {
			if po.Status == entity.POStatusModified {
				if err := replaySnapshot(tx, po); err != nil {
					return err
				}
			}
			if err := setPOStatus(tx, po.ID, entity.POStatusApproved); err != nil {
				return err
			}
			return nil
		}

		if !anyRejected && po.Status != entity.POStatusModified {
			if err := setPOStatus(tx, po.ID, entity.POStatusWaitingApproval); err != nil {
				return err
			}
		}
		// Mixed pending/rejected slots leave the order where it is; the
		// round continues.
		return nil
	})
}

func setPOStatus(tx *gorm.DB, poID, status string) error {
	if err := tx.Model(&entity.ProjectPurchaseOrder{}).
		Where("id = ?", poID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("set purchase order status: %w", err)
	}
	return nil
}

// replaySnapshot applies a MODIFIED order's pending edits: detach every cost
// item from the order, re-attach the snapshot's survivors and write the
// edited amounts, then drop both snapshots.
func replaySnapshot(tx *gorm.DB, po *entity.ProjectPurchaseOrder) error {
	if err := tx.Model(&entity.ProjectCostItem{}).
		Where("project_purchase_order_id = ?", po.ID).
		Update("project_purchase_order_id", nil).Error; err != nil {
		return fmt.Errorf("detach cost items: %w", err)
	}

	for _, snap := range po.NewData {
		if snap.ModifiedStatus == entity.SnapshotItemRemoved {
			continue
		}
		updates := map[string]interface{}{
			"project_purchase_order_id": po.ID,
			"updated_at":                time.Now(),
		}
		if snap.ModifiedStatus == entity.SnapshotItemEdited {
			updates["amount"] = snap.Amount
			updates["price"] = snap.Price
		}
		if err := tx.Model(&entity.ProjectCostItem{}).
			Where("id = ?", snap.ItemID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("replay snapshot item %s: %w", snap.ItemID, err)
		}
	}

	if err := tx.Model(&entity.ProjectPurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]interface{}{
			"old_data": nil,
			"new_data": nil,
		}).Error; err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}

// Get returns one purchase order with its approvers and cost items.
func (s *POApprovalService) Get(ctx context.Context, tc *tenant.Context, poID string) (*entity.ProjectPurchaseOrder, error) {
	var po entity.ProjectPurchaseOrder
	err := tc.DB.WithContext(ctx).
		Where("id = ?", poID).
		Preload("Approvers").
		Preload("Approvers.User").
		Preload("CostItems").
		Preload("Vendor").
		First(&po).Error
	if err != nil {
		return nil, fmt.Errorf("purchase order not found: %w", err)
	}
	return &po, nil
}

// List returns a project's purchase orders, newest first.
func (s *POApprovalService) List(ctx context.Context, tc *tenant.Context, projectID, status string) ([]entity.ProjectPurchaseOrder, error) {
	query := tc.DB.WithContext(ctx).Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pos []entity.ProjectPurchaseOrder
	err := query.Preload("Approvers").Preload("Vendor").Order("created_at DESC").Find(&pos).Error
	return pos, err
}
