package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/role"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// LineService aggregates quotation line items and guards sheet deletion
// against already-applied flat discounts.
type LineService struct {
	log *zap.Logger
}

func NewLineService(log *zap.Logger) *LineService {
	return &LineService{log: log}
}

// SumProjectLine sums amount*price across all line items of the visible
// projects. Returns 0 when there are no rows.
func (s *LineService) SumProjectLine(ctx context.Context, tc *tenant.Context, actor *role.Actor, projectID string) (float64, error) {
	db := tc.DB.WithContext(ctx)

	ids, err := scopedProjectIDs(db, actor, projectID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var total float64
	err = db.Model(&entity.ProjectLineItem{}).
		Select("COALESCE(SUM(amount * price), 0)").
		Where("project_id IN ?", ids).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum line items: %w", err)
	}
	return total, nil
}

// ProjectLineTotal is one per-project line item sum.
type ProjectLineTotal struct {
	ProjectID string  `json:"project_id"`
	Total     float64 `json:"total"`
}

// SumEachProjectLine returns the line item sums grouped per project.
func (s *LineService) SumEachProjectLine(ctx context.Context, tc *tenant.Context, actor *role.Actor, projectID string) ([]ProjectLineTotal, error) {
	db := tc.DB.WithContext(ctx)

	ids, err := scopedProjectIDs(db, actor, projectID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ProjectLineTotal{}, nil
	}

	var totals []ProjectLineTotal
	err = db.Model(&entity.ProjectLineItem{}).
		Select("project_id, COALESCE(SUM(amount * price), 0) AS total").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("sum line items per project: %w", err)
	}
	return totals, nil
}

// DeleteSheet removes a sheet and its line items. A sheet carrying a flat
// discount may only go when the project's remaining line total still covers
// the discount already applied.
func (s *LineService) DeleteSheet(ctx context.Context, tc *tenant.Context, sheetID string) Result {
	return runTx(ctx, tc, s.log, CodeDeleteSheetSuccess, CodeDataInvalid, func(tx *gorm.DB) error {
		var sheet entity.ProjectSheet
		if err := tx.Where("id = ?", sheetID).First(&sheet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return reject(CodeDataInvalid)
			}
			return fmt.Errorf("load sheet: %w", err)
		}

		if sheet.DiscountType == entity.DiscountTypeFlat && sheet.DiscountAmount > 0 {
			var projectTotal float64
			if err := tx.Model(&entity.ProjectLineItem{}).
				Select("COALESCE(SUM(amount * price), 0)").
				Where("project_id = ?", sheet.ProjectID).
				Scan(&projectTotal).Error; err != nil {
				return fmt.Errorf("sum project lines: %w", err)
			}

			var sheetTotal float64
			if err := tx.Model(&entity.ProjectLineItem{}).
				Select("COALESCE(SUM(amount * price), 0)").
				Where("project_sheet_id = ?", sheet.ID).
				Scan(&sheetTotal).Error; err != nil {
				return fmt.Errorf("sum sheet lines: %w", err)
			}

			if projectTotal-sheetTotal-sheet.DiscountAmount < 0 {
				return reject(CodeDataInvalid)
			}
		}

		if err := tx.Where("project_sheet_id = ?", sheet.ID).Delete(&entity.ProjectLineItem{}).Error; err != nil {
			return fmt.Errorf("delete sheet lines: %w", err)
		}
		if err := tx.Where("id = ?", sheet.ID).Delete(&entity.ProjectSheet{}).Error; err != nil {
			return fmt.Errorf("delete sheet: %w", err)
		}
		return nil
	})
}
