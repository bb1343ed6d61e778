package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/middleware"
	"github.com/datphandbplus/financial-be-sub001/internal/storage"
)

// POHandler serves purchase orders: the approval chain and the attachment
// upload/download pair.
type POHandler struct {
	base
	store *storage.Store
}

func (h *POHandler) Get(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	po, err := h.svc.POApproval.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		NotFound(c, "Purchase order not found")
		return
	}
	Success(c, po)
}

func (h *POHandler) List(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		BadRequest(c, "project_id is required")
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	pos, err := h.svc.POApproval.List(c.Request.Context(), tc, projectID, c.Query("status"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": pos})
}

func (h *POHandler) UpdateApprover(c *gin.Context) {
	var decision service.ApproverDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	Outcome(c, h.svc.POApproval.UpdateApprover(c.Request.Context(), tc, middleware.Actor(c), c.Param("approverId"), decision))
}

// UploadAttachment stores one file against the purchase order and records its
// object key.
func (h *POHandler) UploadAttachment(c *gin.Context) {
	poID := c.Param("id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required")
		return
	}
	defer file.Close()

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	po, err := h.svc.POApproval.Get(ctx, tc, poID)
	if err != nil {
		NotFound(c, "Purchase order not found")
		return
	}

	key, err := h.store.Upload(ctx, tc.Channel, "purchase-orders",
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		InternalError(c, "upload attachment: "+err.Error())
		return
	}

	if err := tc.DB.WithContext(ctx).Model(&entity.ProjectPurchaseOrder{}).
		Where("id = ?", poID).
		Updates(map[string]interface{}{
			"attachment_key": key,
			"updated_at":     time.Now(),
		}).Error; err != nil {
		InternalError(c, "record attachment: "+err.Error())
		return
	}

	// Replacing an attachment orphans the previous object.
	if po.AttachmentKey != nil {
		if err := h.store.Remove(ctx, *po.AttachmentKey); err != nil {
			h.log.Warn("Removing replaced attachment failed",
				zap.String("key", *po.AttachmentKey), zap.Error(err))
		}
	}

	Success(c, gin.H{"attachment_key": key})
}

func (h *POHandler) DownloadAttachment(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	po, err := h.svc.POApproval.Get(ctx, tc, c.Param("id"))
	if err != nil {
		NotFound(c, "Purchase order not found")
		return
	}
	if po.AttachmentKey == nil {
		NotFound(c, "No attachment on this purchase order")
		return
	}

	object, err := h.store.Download(ctx, *po.AttachmentKey)
	if err != nil {
		InternalError(c, "download attachment: "+err.Error())
		return
	}
	defer object.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=\""+po.Code+"\"")
	if _, err := io.Copy(c.Writer, object); err != nil {
		h.log.Warn("Stream attachment interrupted")
	}
}
