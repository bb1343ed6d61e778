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

// VOApprovalService runs the variation order approval chain with the same
// transition shape as purchase orders: N-of-N to approve, any single
// rejection fails the order. Approving a VO is what makes its added cost
// items count in the ledger and its removed items drop out.
type VOApprovalService struct {
	log *zap.Logger
}

func NewVOApprovalService(log *zap.Logger) *VOApprovalService {
	return &VOApprovalService{log: log}
}

// UpdateApprover records one decision on a variation order approver slot.
func (s *VOApprovalService) UpdateApprover(ctx context.Context, tc *tenant.Context, actor *role.Actor, approverID string, decision ApproverDecision) Result {
	return runTx(ctx, tc, s.log, CodeUpdateVOApproverSuccess, CodeUpdateVOApproverFail, func(tx *gorm.DB) error {
		var slot entity.VOApprover
		if err := tx.Where("id = ?", approverID).Preload("VO").First(&slot).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeVOApproverInvalid)
			}
			return fmt.Errorf("load VO approver: %w", err)
		}

		vo := slot.VO
		if vo == nil {
			return reject(CodeVOApproverInvalid)
		}
		if !claimable(slot.Status, slot.UserID, slot.RoleKey, actor) {
			return reject(CodeVOApproverInvalid)
		}
		switch vo.Status {
		case entity.VOStatusWaitingApproval, entity.VOStatusRejected:
		default:
			return reject(CodeVOApproverInvalid)
		}

		now := time.Now()
		if err := tx.Model(&entity.VOApprover{}).
			Where("id = ?", slot.ID).
			Updates(map[string]interface{}{
				"user_id":     actor.ID,
				"status":      decision.Status,
				"comment":     decision.Comment,
				"approved_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return fmt.Errorf("record VO decision: %w", err)
		}

		if decision.Status == entity.ApproverStatusRejected {
			return setVOStatus(tx, vo.ID, entity.VOStatusRejected)
		}

		var slots []entity.VOApprover
		if err := tx.Where("project_vo_id = ?", vo.ID).Find(&slots).Error; err != nil {
			return fmt.Errorf("load VO approver slots: %w", err)
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
			return setVOStatus(tx, vo.ID, entity.VOStatusApproved)
		}
		if !anyRejected {
			return setVOStatus(tx, vo.ID, entity.VOStatusWaitingApproval)
		}
		return nil
	})
}

func setVOStatus(tx *gorm.DB, voID, status string) error {
	if err := tx.Model(&entity.ProjectVO{}).
		Where("id = ?", voID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("set VO status: %w", err)
	}
	return nil
}

// List returns a project's variation orders, newest first.
func (s *VOApprovalService) List(ctx context.Context, tc *tenant.Context, projectID, status string) ([]entity.ProjectVO, error) {
	query := tc.DB.WithContext(ctx).Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var vos []entity.ProjectVO
	err := query.Preload("Approvers").Order("created_at DESC").Find(&vos).Error
	return vos, err
}
