package entity

import (
	"time"
)

// QuotationStatus values for Project.QuotationStatus
const (
	QuotationStatusProcessing      = "PROCESSING"
	QuotationStatusWaitingApproval = "WAITING_APPROVAL"
	QuotationStatusApproved        = "APPROVED"
	QuotationStatusCancelled       = "CANCELLED"
)

// ProjectStatus values for Project.ProjectStatus
const (
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusDone       = "DONE"
	ProjectStatusOnHold     = "ON_HOLD"
)

// Discount types shared by projects, sheets and purchase orders
const (
	DiscountTypeFlat    = "$"
	DiscountTypePercent = "%"
)

// Project is the central business object. It is never soft-deleted.
type Project struct {
	ID              string  `json:"id" gorm:"primaryKey;size:32"`
	Code            string  `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name            string  `json:"name" gorm:"size:256;not null"`
	ClientID        *string `json:"client_id" gorm:"size:32;index"`
	QuotationStatus string  `json:"quotation_status" gorm:"size:20;not null;default:PROCESSING"`
	ProjectStatus   string  `json:"project_status" gorm:"size:20;not null;default:IN_PROGRESS"`

	// Actor assignments, mutable only through the reassignment flow.
	ManageBy    *string `json:"manage_by" gorm:"size:32;index"`
	SaleBy      *string `json:"sale_by" gorm:"size:32;index"`
	QsBy        *string `json:"qs_by" gorm:"size:32;index"`
	PurchaseBy  *string `json:"purchase_by" gorm:"size:32"`
	ConstructBy *string `json:"construct_by" gorm:"size:32"`

	// Fee thresholds (percent) used by the cost modification flow.
	ExtraCostFee  float64 `json:"extra_cost_fee" gorm:"type:decimal(5,2);default:0"`
	TotalExtraFee float64 `json:"total_extra_fee" gorm:"type:decimal(5,2);default:0"`

	DiscountType   string  `json:"discount_type" gorm:"size:2;default:$"`
	DiscountAmount float64 `json:"discount_amount" gorm:"type:decimal(14,2);default:0"`

	ValidDate  *time.Time `json:"valid_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectSheet groups quotation line items. A sheet can carry its own discount.
type ProjectSheet struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID      string    `json:"project_id" gorm:"size:32;not null;index"`
	Name           string    `json:"name" gorm:"size:256;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	DiscountType   string    `json:"discount_type" gorm:"size:2;default:$"`
	DiscountAmount float64   `json:"discount_amount" gorm:"type:decimal(14,2);default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (ProjectSheet) TableName() string {
	return "project_sheets"
}

// ProjectLineItem is one quotation line under a sheet.
type ProjectLineItem struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectSheetID string    `json:"project_sheet_id" gorm:"size:32;not null;index"`
	ProjectID      string    `json:"project_id" gorm:"size:32;not null;index"`
	Name           string    `json:"name" gorm:"size:256;not null"`
	Unit           string    `json:"unit" gorm:"size:20"`
	Amount         float64   `json:"amount" gorm:"type:decimal(14,4);not null;default:0"`
	Price          float64   `json:"price" gorm:"type:decimal(14,4);not null;default:0"`
	DiscountType   string    `json:"discount_type" gorm:"size:2;default:$"`
	DiscountAmount float64   `json:"discount_amount" gorm:"type:decimal(14,2);default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Sheet *ProjectSheet `json:"sheet,omitempty" gorm:"foreignKey:ProjectSheetID"`
}

func (ProjectLineItem) TableName() string {
	return "project_line_items"
}
