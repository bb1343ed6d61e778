package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
)

// PlanHandler serves billing and payment plans.
type PlanHandler struct {
	base
}

func (h *PlanHandler) AddBillPlan(c *gin.Context) {
	var req service.AddPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Plan.AddBillPlan(c.Request.Context(), tc, req))
}

func (h *PlanHandler) UpdateBillPlan(c *gin.Context) {
	var req service.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Plan.UpdateBillPlan(c.Request.Context(), tc, c.Param("id"), req))
}

func (h *PlanHandler) ListBillPlans(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	plans, err := h.svc.Plan.ListBillPlans(c.Request.Context(), tc, c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": plans})
}

func (h *PlanHandler) AddPaymentPlan(c *gin.Context) {
	var req service.AddPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Plan.AddPaymentPlan(c.Request.Context(), tc, req))
}

func (h *PlanHandler) UpdatePaymentPlan(c *gin.Context) {
	var req service.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.Plan.UpdatePaymentPlan(c.Request.Context(), tc, c.Param("id"), req))
}

func (h *PlanHandler) ListPaymentPlans(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	plans, err := h.svc.Plan.ListPaymentPlans(c.Request.Context(), tc, c.Query("project_id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": plans})
}
