package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
	"github.com/datphandbplus/financial-be-sub001/internal/report"
)

// CostHandler serves the ledger aggregates, the cost modification flow and the
// xlsx export.
type CostHandler struct {
	base
}

func (h *CostHandler) Sum(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	summary, err := h.svc.Cost.SumProjectCost(c.Request.Context(), tc, middleware.Actor(c), c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, summary)
}

func (h *CostHandler) SumPerProject(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	totals, err := h.svc.Cost.SumEachProjectCost(c.Request.Context(), tc, middleware.Actor(c), c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": totals})
}

func (h *CostHandler) Modify(c *gin.Context) {
	var req service.ModifyCostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Cost.Modify(c.Request.Context(), tc, middleware.Actor(c), req))
}

func (h *CostHandler) ListModifications(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		BadRequest(c, "project_id is required")
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	mods, err := h.svc.Cost.ListModifications(c.Request.Context(), tc, projectID, c.Query("status"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": mods})
}

func (h *CostHandler) ResolveModification(c *gin.Context) {
	var decision service.ApproverDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.ModificationApproval.Resolve(c.Request.Context(), tc, middleware.Actor(c), c.Param("id"), decision))
}

// ExportReport streams the per-project cost workbook for the projects visible
// to the caller.
func (h *CostHandler) ExportReport(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	actor := middleware.Actor(c)
	ctx := c.Request.Context()

	projects, _, err := h.svc.Project.List(ctx, tc, actor, c.Query("quotation_status"), 1, 100)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	rows := make([]report.ProjectCostRow, 0, len(projects))
	for _, project := range projects {
		summary, err := h.svc.Cost.SumProjectCost(ctx, tc, actor, project.ID)
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		rows = append(rows, report.ProjectCostRow{Project: project, Summary: summary})
	}

	f, filename, err := report.BuildCostReport(tc.Channel, rows)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
