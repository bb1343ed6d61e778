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

// ProjectService owns the quotation lifecycle: creation, submission for
// approval, and the PM/Sale approval chain that ends in APPROVED or
// CANCELLED. Quotation approval materializes the approved line items into the
// project's initial cost items.
type ProjectService struct {
	log *zap.Logger
}

func NewProjectService(log *zap.Logger) *ProjectService {
	return &ProjectService{log: log}
}

type CreateProjectRequest struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	ClientID      *string `json:"client_id"`
	ManageBy      string  `json:"manage_by" binding:"required"`
	SaleBy        string  `json:"sale_by" binding:"required"`
	QsBy          *string `json:"qs_by"`
	PurchaseBy    *string `json:"purchase_by"`
	ExtraCostFee  float64 `json:"extra_cost_fee"`
	TotalExtraFee float64 `json:"total_extra_fee"`
}

// Create opens a project in quotation PROCESSING state with one approver slot
// each for the PM and the Sale actor.
func (s *ProjectService) Create(ctx context.Context, tc *tenant.Context, actor *role.Actor, req CreateProjectRequest) (*entity.Project, Result) {
	project := &entity.Project{
		ID:              newID(),
		Code:            req.Code,
		Name:            req.Name,
		ClientID:        req.ClientID,
		QuotationStatus: entity.QuotationStatusProcessing,
		ProjectStatus:   entity.ProjectStatusInProgress,
		ManageBy:        &req.ManageBy,
		SaleBy:          &req.SaleBy,
		QsBy:            req.QsBy,
		PurchaseBy:      req.PurchaseBy,
		ExtraCostFee:    req.ExtraCostFee,
		TotalExtraFee:   req.TotalExtraFee,
	}

	res := runTx(ctx, tc, s.log, CodeUpdateProjectSuccess, CodeUpdateProjectFail, func(tx *gorm.DB) error {
		for _, slot := range []struct {
			roleKey string
			userID  string
		}{
			{role.KeyProjectManager, req.ManageBy},
			{role.KeySale, req.SaleBy},
		} {
			var user entity.User
			if err := tx.Where("id = ?", slot.userID).First(&user).Error; err != nil {
				return reject(CodeUserNotFound)
			}
			if user.IsDisabled || user.RoleKey != slot.roleKey {
				return reject(CodeUserNotFound)
			}
		}

		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		approvers := []entity.ProjectApprover{
			{ID: newID(), ProjectID: project.ID, RoleKey: role.KeyProjectManager, UserID: &req.ManageBy, Status: entity.ApproverStatusProcessing},
			{ID: newID(), ProjectID: project.ID, RoleKey: role.KeySale, UserID: &req.SaleBy, Status: entity.ApproverStatusProcessing},
		}
		if err := tx.Create(&approvers).Error; err != nil {
			return fmt.Errorf("create project approvers: %w", err)
		}
		return nil
	})
	if !res.Status {
		return nil, res
	}
	return project, res
}

// SubmitQuotation moves a PROCESSING quotation to WAITING_APPROVAL and opens
// the approver slots.
func (s *ProjectService) SubmitQuotation(ctx context.Context, tc *tenant.Context, projectID string) Result {
	return runTx(ctx, tc, s.log, CodeUpdateProjectSuccess, CodeUpdateProjectFail, func(tx *gorm.DB) error {
		var project entity.Project
		if err := tx.Where("id = ?", projectID).First(&project).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeProjectInvalid)
			}
			return fmt.Errorf("load project: %w", err)
		}
		if project.QuotationStatus != entity.QuotationStatusProcessing {
			return reject(CodeProjectInvalid)
		}

		now := time.Now()
		if err := tx.Model(&entity.Project{}).
			Where("id = ?", project.ID).
			Updates(map[string]interface{}{
				"quotation_status": entity.QuotationStatusWaitingApproval,
				"updated_at":       now,
			}).Error; err != nil {
			return fmt.Errorf("update quotation status: %w", err)
		}

		if err := tx.Model(&entity.ProjectApprover{}).
			Where("project_id = ? AND status = ?", project.ID, entity.ApproverStatusProcessing).
			Updates(map[string]interface{}{
				"status":     entity.ApproverStatusWaitingApproval,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("open approver slots: %w", err)
		}
		return nil
	})
}

// DecideQuotation records one PM/Sale decision on a quotation. All slots
// approving finalizes the quotation and materializes cost items from the
// quotation lines; any rejection cancels the quotation.
func (s *ProjectService) DecideQuotation(ctx context.Context, tc *tenant.Context, actor *role.Actor, approverID string, decision ApproverDecision) Result {
	return runTx(ctx, tc, s.log, CodeUpdateProjectSuccess, CodeUpdateProjectApproverFail, func(tx *gorm.DB) error {
		var slot entity.ProjectApprover
		if err := tx.Where("id = ?", approverID).First(&slot).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeDataInvalid)
			}
			return fmt.Errorf("load quotation approver: %w", err)
		}
		if !claimable(slot.Status, slot.UserID, slot.RoleKey, actor) {
			return reject(CodeDataInvalid)
		}

		var project entity.Project
		if err := tx.Where("id = ?", slot.ProjectID).First(&project).Error; err != nil {
			return fmt.Errorf("load project: %w", err)
		}
		if project.QuotationStatus != entity.QuotationStatusWaitingApproval {
			return reject(CodeProjectInvalid)
		}

		now := time.Now()
		if err := tx.Model(&entity.ProjectApprover{}).
			Where("id = ?", slot.ID).
			Updates(map[string]interface{}{
				"user_id":     actor.ID,
				"status":      decision.Status,
				"comment":     decision.Comment,
				"approved_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return fmt.Errorf("record quotation decision: %w", err)
		}

		if decision.Status == entity.ApproverStatusRejected {
			if err := tx.Model(&entity.Project{}).
				Where("id = ?", project.ID).
				Updates(map[string]interface{}{
					"quotation_status": entity.QuotationStatusCancelled,
					"updated_at":       now,
				}).Error; err != nil {
				return fmt.Errorf("cancel quotation: %w", err)
			}
			return nil
		}

		var pending int64
		if err := tx.Model(&entity.ProjectApprover{}).
			Where("project_id = ? AND status <> ?", project.ID, entity.ApproverStatusApproved).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("count pending slots: %w", err)
		}
		if pending > 0 {
			return nil
		}

		if err := tx.Model(&entity.Project{}).
			Where("id = ?", project.ID).
			Updates(map[string]interface{}{
				"quotation_status": entity.QuotationStatusApproved,
				"updated_at":       now,
			}).Error; err != nil {
			return fmt.Errorf("approve quotation: %w", err)
		}
		return materializeCostItems(tx, project.ID)
	})
}

// materializeCostItems copies the approved quotation lines into the project's
// initial cost items.
func materializeCostItems(tx *gorm.DB, projectID string) error {
	var lines []entity.ProjectLineItem
	if err := tx.Where("project_id = ?", projectID).Find(&lines).Error; err != nil {
		return fmt.Errorf("load quotation lines: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	items := make([]entity.ProjectCostItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, entity.ProjectCostItem{
			ID:        newID(),
			ProjectID: projectID,
			Name:      line.Name,
			Unit:      line.Unit,
			Amount:    line.Amount,
			Price:     line.Price,
		})
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("materialize cost items: %w", err)
	}
	return nil
}

// Get loads one project with its client.
func (s *ProjectService) Get(ctx context.Context, tc *tenant.Context, projectID string) (*entity.Project, error) {
	var project entity.Project
	err := tc.DB.WithContext(ctx).Where("id = ?", projectID).Preload("Client").First(&project).Error
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	return &project, nil
}

// List returns the projects visible to the actor.
func (s *ProjectService) List(ctx context.Context, tc *tenant.Context, actor *role.Actor, quotationStatus string, page, size int) ([]entity.Project, int64, error) {
	db := tc.DB.WithContext(ctx)

	query := db.Model(&entity.Project{})
	if quotationStatus != "" {
		query = query.Where("quotation_status = ?", quotationStatus)
	}
	if actor != nil {
		cap := actor.Cap()
		if cap.IsPM {
			query = query.Where("manage_by = ?", actor.ID)
		}
		if cap.IsQS {
			query = query.Where("qs_by = ?", actor.ID)
		}
	}

	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var projects []entity.Project
	err := query.Preload("Client").Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).Find(&projects).Error
	return projects, total, err
}
