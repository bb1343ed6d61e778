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

// ModificationApprovalService resolves WAITING cost modifications: approval
// applies the proposed amounts (snapshotting the original on a first change),
// rejection closes the proposal and leaves the item untouched.
type ModificationApprovalService struct {
	log *zap.Logger
}

func NewModificationApprovalService(log *zap.Logger) *ModificationApprovalService {
	return &ModificationApprovalService{log: log}
}

// Resolve decides one pending modification. Only procurement managers and the
// CEO may resolve; the handler layer gates that capability before calling in.
func (s *ModificationApprovalService) Resolve(ctx context.Context, tc *tenant.Context, actor *role.Actor, modificationID string, decision ApproverDecision) Result {
	return runTx(ctx, tc, s.log, CodeUpdateModificationSuccess, CodeUpdateModificationFail, func(tx *gorm.DB) error {
		var mod entity.ProjectCostModification
		if err := tx.Where("id = ?", modificationID).First(&mod).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeCostModificationInvalid)
			}
			return fmt.Errorf("load modification: %w", err)
		}
		if mod.Status != entity.CostModificationStatusWaiting {
			return reject(CodeCostModificationInvalid)
		}

		if decision.Status == entity.ApproverStatusRejected {
			now := time.Now()
			if err := tx.Model(&entity.ProjectCostModification{}).
				Where("id = ?", mod.ID).
				Updates(map[string]interface{}{
					"status":      entity.CostModificationStatusRejected,
					"comment":     decision.Comment,
					"resolved_by": actor.ID,
					"resolved_at": now,
					"updated_at":  now,
				}).Error; err != nil {
				return fmt.Errorf("reject modification: %w", err)
			}
			return nil
		}

		var item entity.ProjectCostItem
		if err := tx.Where("id = ?", mod.ProjectCostItemID).First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeProjectCostItemInvalid)
			}
			return fmt.Errorf("load cost item: %w", err)
		}

		return applyModification(tx, &item, &mod, actor.ID)
	})
}
