// Package report renders the ledger aggregates into xlsx workbooks for the
// finance team.
package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
)

var costReportHeaders = []string{
	"Project Code", "Project Name", "Quotation Status",
	"Baseline", "Current", "With PO", "Without PO",
}

// ProjectCostRow pairs one project with its ledger aggregates.
type ProjectCostRow struct {
	Project entity.Project
	Summary service.CostSummary
}

// BuildCostReport renders one cost summary workbook. The caller streams the
// file to the response or uploads it to the object store.
func BuildCostReport(channel string, rows []ProjectCostRow) (*excelize.File, string, error) {
	f := excelize.NewFile()
	sheet := "Project Costs"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range costReportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	var totals service.CostSummary
	for rowIdx, row := range rows {
		r := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.Project.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Project.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Project.QuotationStatus)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Summary.Base)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), row.Summary.Modified)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", r), row.Summary.HasPO)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", r), row.Summary.NoPO)

		totals.Base += row.Summary.Base
		totals.Modified += row.Summary.Modified
		totals.HasPO += row.Summary.HasPO
		totals.NoPO += row.Summary.NoPO
	}

	summaryRow := len(rows) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), fmt.Sprintf("%d projects", len(rows)))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", summaryRow), totals.Base)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", summaryRow), totals.Modified)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", summaryRow), totals.HasPO)
	f.SetCellValue(sheet, fmt.Sprintf("G%d", summaryRow), totals.NoPO)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("G%d", summaryRow), summaryStyle)

	colWidths := []float64{14, 30, 18, 14, 14, 14, 14}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("project_costs_%s_%s.xlsx", channel, time.Now().Format("20060102"))
	return f, filename, nil
}
