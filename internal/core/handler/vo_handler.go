package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
)

// VOHandler serves the variation order approval chain.
type VOHandler struct {
	base
}

func (h *VOHandler) List(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		BadRequest(c, "project_id is required")
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	vos, err := h.svc.VOApproval.List(c.Request.Context(), tc, projectID, c.Query("status"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": vos})
}

func (h *VOHandler) UpdateApprover(c *gin.Context) {
	var decision service.ApproverDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.VOApproval.UpdateApprover(c.Request.Context(), tc, middleware.Actor(c), c.Param("approverId"), decision))
}
