package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
	"github.com/datphandbplus/financial-be-sub001/internal/core/repository"
)

// ReferenceHandler serves the reference data CRUD: clients, vendors and users.
type ReferenceHandler struct {
	base
	clients repository.ClientRepository
	vendors repository.VendorRepository
	users   repository.UserRepository
}

type clientRequest struct {
	Name        string `json:"name" binding:"required"`
	ShortName   string `json:"short_name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	TaxNumber   string `json:"tax_number"`
}

func (h *ReferenceHandler) ListClients(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	page, pageSize := GetPagination(c)
	clients, total, err := h.clients.List(tc.DB.WithContext(c.Request.Context()), c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: clients, Pagination: paginate(total, page, pageSize)})
}

func (h *ReferenceHandler) GetClient(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	client, err := h.clients.GetByID(tc.DB.WithContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		NotFound(c, "Client not found")
		return
	}
	Success(c, client)
}

func (h *ReferenceHandler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	client := &entity.Client{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		ShortName:   req.ShortName,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
	}
	if err := h.clients.Create(tc.DB.WithContext(c.Request.Context()), client); err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, client)
}

func (h *ReferenceHandler) UpdateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	client, err := h.clients.GetByID(db, c.Param("id"))
	if err != nil {
		NotFound(c, "Client not found")
		return
	}

	client.Name = req.Name
	client.ShortName = req.ShortName
	client.ContactName = req.ContactName
	client.Phone = req.Phone
	client.Email = req.Email
	client.Address = req.Address
	client.TaxNumber = req.TaxNumber
	if err := h.clients.Update(db, client); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, client)
}

func (h *ReferenceHandler) DeleteClient(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	if err := h.clients.SoftDelete(tc.DB.WithContext(c.Request.Context()), c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

type vendorRequest struct {
	Name        string  `json:"name" binding:"required"`
	ShortName   string  `json:"short_name"`
	ContactName string  `json:"contact_name"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	TaxNumber   string  `json:"tax_number"`
	CategoryID  *string `json:"category_id"`
}

func (h *ReferenceHandler) ListVendors(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	page, pageSize := GetPagination(c)
	vendors, total, err := h.vendors.List(tc.DB.WithContext(c.Request.Context()),
		c.Query("keyword"), c.Query("category_id"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, ListResponse{Items: vendors, Pagination: paginate(total, page, pageSize)})
}

func (h *ReferenceHandler) GetVendor(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	vendor, err := h.vendors.GetByID(tc.DB.WithContext(c.Request.Context()), c.Param("id"))
	if err != nil {
		NotFound(c, "Vendor not found")
		return
	}
	Success(c, vendor)
}

func (h *ReferenceHandler) CreateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	vendor := &entity.Vendor{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		ShortName:   req.ShortName,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
		CategoryID:  req.CategoryID,
	}
	if err := h.vendors.Create(tc.DB.WithContext(c.Request.Context()), vendor); err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, vendor)
}

func (h *ReferenceHandler) UpdateVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	vendor, err := h.vendors.GetByID(db, c.Param("id"))
	if err != nil {
		NotFound(c, "Vendor not found")
		return
	}

	vendor.Name = req.Name
	vendor.ShortName = req.ShortName
	vendor.ContactName = req.ContactName
	vendor.Phone = req.Phone
	vendor.Email = req.Email
	vendor.Address = req.Address
	vendor.TaxNumber = req.TaxNumber
	vendor.CategoryID = req.CategoryID
	if err := h.vendors.Update(db, vendor); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, vendor)
}

func (h *ReferenceHandler) DeleteVendor(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	if err := h.vendors.SoftDelete(tc.DB.WithContext(c.Request.Context()), c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, nil)
}

func (h *ReferenceHandler) ListUsers(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}

	users, err := h.users.List(tc.DB.WithContext(c.Request.Context()), c.Query("role_key"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}
