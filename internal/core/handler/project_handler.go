package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
)

// ProjectHandler serves the project surface: quotation lifecycle, actor
// reassignment, sheet management and the waiting-action dashboard.
type ProjectHandler struct {
	base
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	project, res := h.svc.Project.Create(c.Request.Context(), tc, middleware.Actor(c), req)
	if !res.Status {
		Outcome(c, res)
		return
	}
	Created(c, project)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Project ID is required")
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	project, err := h.svc.Project.Get(c.Request.Context(), tc, id)
	if err != nil {
		NotFound(c, "Project not found")
		return
	}
	Success(c, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	page, pageSize := GetPagination(c)
	projects, total, err := h.svc.Project.List(c.Request.Context(), tc, middleware.Actor(c), c.Query("quotation_status"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: projects, Pagination: paginate(total, page, pageSize)})
}

func (h *ProjectHandler) SubmitQuotation(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Project.SubmitQuotation(c.Request.Context(), tc, c.Param("id")))
}

func (h *ProjectHandler) DecideQuotation(c *gin.Context) {
	var decision service.ApproverDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Project.DecideQuotation(c.Request.Context(), tc, middleware.Actor(c), c.Param("approverId"), decision))
}

func (h *ProjectHandler) Reassign(c *gin.Context) {
	var req service.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Reassign.HandleChange(c.Request.Context(), tc, c.Param("id"), req))
}

func (h *ProjectHandler) WaitingActions(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	actions, err := h.svc.Waiting.Collect(c.Request.Context(), tc, middleware.Actor(c), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, actions)
}

func (h *ProjectHandler) SumLines(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	total, err := h.svc.Line.SumProjectLine(c.Request.Context(), tc, middleware.Actor(c), c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"total": total})
}

func (h *ProjectHandler) SumLinesPerProject(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	totals, err := h.svc.Line.SumEachProjectLine(c.Request.Context(), tc, middleware.Actor(c), c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": totals})
}

func (h *ProjectHandler) DeleteSheet(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Line.DeleteSheet(c.Request.Context(), tc, c.Param("sheetId")))
}
