package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/datphandbplus/financial-be-sub001/internal/core/service"
	"github.com/datphandbplus/financial-be-sub001/internal/storage"
	"github.com/datphandbplus/financial-be-sub001/internal/tenant"
)

// Handlers bundles the HTTP handlers for wiring.
type Handlers struct {
	Project   *ProjectHandler
	Plan      *PlanHandler
	Cost      *CostHandler
	PO        *POHandler
	VO        *VOHandler
	Reference *ReferenceHandler
}

func NewHandlers(registry *tenant.Registry, svc *service.Services, store *storage.Store, log *zap.Logger) *Handlers {
	b := base{registry: registry, svc: svc, log: log}
	return &Handlers{
		Project:   &ProjectHandler{base: b},
		Plan:      &PlanHandler{base: b},
		Cost:      &CostHandler{base: b},
		PO:        &POHandler{base: b, store: store},
		VO:        &VOHandler{base: b},
		Reference: &ReferenceHandler{base: b},
	}
}

// base holds the shared handler state: the tenant registry and the services.
type base struct {
	registry *tenant.Registry
	svc      *service.Services
	log      *zap.Logger
}

// tenantContext resolves the caller's channel into its database context.
func (b *base) tenantContext(c *gin.Context) (*tenant.Context, bool) {
	channel := c.GetString("channel_id")
	tc, err := b.registry.Get(channel)
	if err != nil {
		b.log.Warn("Channel resolution failed", zap.String("channel", channel), zap.Error(err))
		BadRequest(c, "Unknown channel")
		return nil, false
	}
	return tc, true
}

// Response is the uniform envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated collections.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Outcome writes a business operation result. Rejections stay HTTP 200; the
// message carries the outcome code clients branch on.
func Outcome(c *gin.Context, res service.Result) {
	code := 0
	if !res.Status {
		code = 1
	}
	c.JSON(200, Response{
		Code:    code,
		Message: res.Message,
		Data:    res,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

func paginate(total int64, page, pageSize int) *Pagination {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPages++
	}
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
