package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// PlanService enforces the 100 percent allocation rule across a project's
// billing and payment plans. Both plan kinds share the same allocator.
type PlanService struct {
	log *zap.Logger
}

func NewPlanService(log *zap.Logger) *PlanService {
	return &PlanService{log: log}
}

type AddPlanRequest struct {
	ProjectID     string     `json:"project_id" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	TargetDate    *time.Time `json:"target_date"`
	TargetPercent float64    `json:"target_percent" binding:"required,gt=0"`
	Note          string     `json:"note"`
}

type UpdatePlanRequest struct {
	Name          string     `json:"name"`
	TargetDate    *time.Time `json:"target_date"`
	TargetPercent float64    `json:"target_percent" binding:"required,gt=0"`
	Note          string     `json:"note"`
}

// allocationExceeded sums target_percent over the project's plans of one kind,
// excluding the row being replaced, and reports whether adding percent would
// push the total over 100. Exactly 100 is allowed.
func allocationExceeded(tx *gorm.DB, model interface{}, projectID, excludeID string, percent float64) (bool, error) {
	query := tx.Model(model).Where("project_id = ?", projectID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var sum float64
	if err := query.Select("COALESCE(SUM(target_percent), 0)").Scan(&sum).Error; err != nil {
		return false, fmt.Errorf("sum target percent: %w", err)
	}
	return sum+percent > 100, nil
}

func (s *PlanService) AddBillPlan(ctx context.Context, tc *tenant.Context, req AddPlanRequest) Result {
	return runTx(ctx, tc, s.log, CodeCreatePlanSuccess, CodeCreatePlanFail, func(tx *gorm.DB) error {
		over, err := allocationExceeded(tx, &entity.ProjectBillPlan{}, req.ProjectID, "", req.TargetPercent)
		if err != nil {
			return err
		}
		if over {
			return reject(CodePlanOver)
		}

		plan := &entity.ProjectBillPlan{
			ID:            newID(),
			ProjectID:     req.ProjectID,
			Name:          req.Name,
			TargetDate:    req.TargetDate,
			TargetPercent: req.TargetPercent,
			Status:        entity.PlanStatusProcessing,
			Note:          req.Note,
		}
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("create bill plan: %w", err)
		}
		return nil
	})
}

func (s *PlanService) UpdateBillPlan(ctx context.Context, tc *tenant.Context, planID string, req UpdatePlanRequest) Result {
	return runTx(ctx, tc, s.log, CodeUpdatePlanSuccess, CodeUpdatePlanFail, func(tx *gorm.DB) error {
		var plan entity.ProjectBillPlan
		if err := tx.Where("id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeDataInvalid)
			}
			return fmt.Errorf("load bill plan: %w", err)
		}

		over, err := allocationExceeded(tx, &entity.ProjectBillPlan{}, plan.ProjectID, plan.ID, req.TargetPercent)
		if err != nil {
			return err
		}
		if over {
			return reject(CodePlanOver)
		}

		updates := map[string]interface{}{
			"target_percent": req.TargetPercent,
			"updated_at":     time.Now(),
		}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.TargetDate != nil {
			updates["target_date"] = req.TargetDate
		}
		if req.Note != "" {
			updates["note"] = req.Note
		}
		if err := tx.Model(&entity.ProjectBillPlan{}).Where("id = ?", plan.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update bill plan: %w", err)
		}
		return nil
	})
}

func (s *PlanService) AddPaymentPlan(ctx context.Context, tc *tenant.Context, req AddPlanRequest) Result {
	return runTx(ctx, tc, s.log, CodeCreatePlanSuccess, CodeCreatePlanFail, func(tx *gorm.DB) error {
		over, err := allocationExceeded(tx, &entity.ProjectPaymentPlan{}, req.ProjectID, "", req.TargetPercent)
		if err != nil {
			return err
		}
		if over {
			return reject(CodePlanOver)
		}

		plan := &entity.ProjectPaymentPlan{
			ID:            newID(),
			ProjectID:     req.ProjectID,
			Name:          req.Name,
			TargetDate:    req.TargetDate,
			TargetPercent: req.TargetPercent,
			Status:        entity.PlanStatusProcessing,
			Note:          req.Note,
		}
		if err := tx.Create(plan).Error; err != nil {
			return fmt.Errorf("create payment plan: %w", err)
		}
		return nil
	})
}

func (s *PlanService) UpdatePaymentPlan(ctx context.Context, tc *tenant.Context, planID string, req UpdatePlanRequest) Result {
	return runTx(ctx, tc, s.log, CodeUpdatePlanSuccess, CodeUpdatePlanFail, func(tx *gorm.DB) error {
		var plan entity.ProjectPaymentPlan
		if err := tx.Where("id = ?", planID).First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeDataInvalid)
			}
			return fmt.Errorf("load payment plan: %w", err)
		}

		over, err := allocationExceeded(tx, &entity.ProjectPaymentPlan{}, plan.ProjectID, plan.ID, req.TargetPercent)
		if err != nil {
			return err
		}
		if over {
			return reject(CodePlanOver)
		}

		updates := map[string]interface{}{
			"target_percent": req.TargetPercent,
			"updated_at":     time.Now(),
		}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.TargetDate != nil {
			updates["target_date"] = req.TargetDate
		}
		if req.Note != "" {
			updates["note"] = req.Note
		}
		if err := tx.Model(&entity.ProjectPaymentPlan{}).Where("id = ?", plan.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update payment plan: %w", err)
		}
		return nil
	})
}

// ListBillPlans returns a project's bill plans ordered by target date.
func (s *PlanService) ListBillPlans(ctx context.Context, tc *tenant.Context, projectID string) ([]entity.ProjectBillPlan, error) {
	var plans []entity.ProjectBillPlan
	err := tc.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("target_date ASC NULLS LAST, created_at ASC").
		Find(&plans).Error
	return plans, err
}

// ListPaymentPlans returns a project's payment plans ordered by target date.
func (s *PlanService) ListPaymentPlans(ctx context.Context, tc *tenant.Context, projectID string) ([]entity.ProjectPaymentPlan, error) {
	var plans []entity.ProjectPaymentPlan
	err := tc.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("target_date ASC NULLS LAST, created_at ASC").
		Find(&plans).Error
	return plans, err
}

func newID() string {
	return uuid.New().String()[:32]
}
