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

// ReassignService swaps project actors and cascades the change into any
// in-flight approver slots that still point at the old actor.
type ReassignService struct {
	log *zap.Logger
}

func NewReassignService(log *zap.Logger) *ReassignService {
	return &ReassignService{log: log}
}

// ReassignRequest carries the proposed actor set. Nil means "leave as is";
// ConstructBy may be set to an empty string to clear the assignment.
type ReassignRequest struct {
	ManageBy    *string `json:"manage_by"`
	SaleBy      *string `json:"sale_by"`
	QsBy        *string `json:"qs_by"`
	PurchaseBy  *string `json:"purchase_by"`
	ConstructBy *string `json:"construct_by"`
}

type actorChange struct {
	column  string
	roleKey string
	old     *string
	next    *string
	clear   bool
}

// HandleChange validates and applies a project actor reassignment.
func (s *ReassignService) HandleChange(ctx context.Context, tc *tenant.Context, projectID string, req ReassignRequest) Result {
	db := tc.DB.WithContext(ctx)

	var project entity.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(CodeProjectInvalid)
		}
		s.log.Error("Load project failed", zap.String("channel", tc.Channel), zap.Error(err))
		return fail(CodeUpdateProjectFail)
	}

	changes := collectChanges(&project, req)
	if len(changes) == 0 {
		return ok(CodeNothingChange)
	}

	// Validate every proposed user before touching anything.
	for _, ch := range changes {
		if ch.clear {
			continue
		}
		var user entity.User
		if err := db.Where("id = ?", *ch.next).First(&user).Error; err != nil {
			return fail(CodeUserNotFound)
		}
		if user.IsDisabled || user.RoleKey != ch.roleKey {
			return fail(CodeUserNotFound)
		}
	}

	return runTx(ctx, tc, s.log, CodeUpdateProjectSuccess, CodeUpdateProjectFail, func(tx *gorm.DB) error {
		updates := map[string]interface{}{"updated_at": time.Now()}
		for _, ch := range changes {
			if ch.clear {
				updates[ch.column] = nil
			} else {
				updates[ch.column] = *ch.next
			}
		}
		if err := tx.Model(&entity.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update project actors: %w", err)
		}

		for _, ch := range changes {
			if err := s.cascade(tx, &project, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

func collectChanges(project *entity.Project, req ReassignRequest) []actorChange {
	var changes []actorChange

	add := func(column, roleKey string, old, next *string, allowClear bool) {
		if next == nil {
			return
		}
		if allowClear && *next == "" {
			if old != nil {
				changes = append(changes, actorChange{column: column, roleKey: roleKey, old: old, clear: true})
			}
			return
		}
		if old != nil && *old == *next {
			return
		}
		changes = append(changes, actorChange{column: column, roleKey: roleKey, old: old, next: next})
	}

	add("manage_by", role.KeyProjectManager, project.ManageBy, req.ManageBy, false)
	add("sale_by", role.KeySale, project.SaleBy, req.SaleBy, false)
	add("qs_by", role.KeyQS, project.QsBy, req.QsBy, false)
	add("purchase_by", role.KeyPurchasing, project.PurchaseBy, req.PurchaseBy, false)
	add("construct_by", role.KeyConstruction, project.ConstructBy, req.ConstructBy, true)

	return changes
}

// cascade re-points approver slots tied to a swapped actor. Before quotation
// approval the quotation approver rows follow PM/Sale; after approval the not
// yet approved PO slots of the old PM restart under the new one.
func (s *ReassignService) cascade(tx *gorm.DB, project *entity.Project, ch actorChange) error {
	approved := project.QuotationStatus == entity.QuotationStatusApproved

	if !approved && (ch.column == "manage_by" || ch.column == "sale_by") {
		if err := tx.Model(&entity.ProjectApprover{}).
			Where("project_id = ? AND role_key = ?", project.ID, ch.roleKey).
			Updates(map[string]interface{}{
				"user_id":    ch.next,
				"comment":    "",
				"updated_at": time.Now(),
			}).Error; err != nil {
			return rejection{code: CodeUpdateProjectApproverFail}
		}
		return nil
	}

	if approved && ch.column == "manage_by" && ch.old != nil {
		if err := tx.Model(&entity.PurchaseOrderApprover{}).
			Where("user_id = ? AND status <> ? AND project_purchase_order_id IN (?)",
				*ch.old,
				entity.ApproverStatusApproved,
				tx.Model(&entity.ProjectPurchaseOrder{}).Select("id").Where("project_id = ?", project.ID),
			).
			Updates(map[string]interface{}{
				"user_id":     ch.next,
				"status":      entity.ApproverStatusWaitingApproval,
				"approved_at": nil,
				"comment":     "",
				"updated_at":  time.Now(),
			}).Error; err != nil {
			return rejection{code: CodeUpdateProjectApproverFail}
		}
	}
	return nil
}
