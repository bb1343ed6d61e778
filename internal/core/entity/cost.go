package entity

import (
	"time"
)

// CostModificationStatus values
const (
	CostModificationStatusValid    = "VALID"
	CostModificationStatusWaiting  = "WAITING"
	CostModificationStatusRejected = "REJECTED"
)

// ProjectCostItem is one cost line of a project. Items created at quotation
// approval carry no backup values; the first post-approval modification
// snapshots amount/price into bk_amount/bk_price, which then serve as the
// original baseline for fee threshold checks. An extra item with a nil
// bk_price has never been modified and is treated as new on its first change.
type ProjectCostItem struct {
	ID                     string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID              string  `json:"project_id" gorm:"size:32;not null;index"`
	ProjectPurchaseOrderID *string `json:"project_purchase_order_id" gorm:"size:32;index"`
	VendorID               *string `json:"vendor_id" gorm:"size:32;index"`

	// Variation order linkage. vo_add_id marks an item introduced by a VO,
	// vo_delete_id marks an item a VO removes once approved.
	VOAddID    *string `json:"vo_add_id" gorm:"size:32;index"`
	VODeleteID *string `json:"vo_delete_id" gorm:"size:32;index"`

	// PO summary rows: is_parent rows aggregate their children and are
	// excluded from the modified/has_po/no_po sums.
	ParentID *string `json:"parent_id" gorm:"size:32"`
	IsParent bool    `json:"is_parent" gorm:"default:false"`

	IsExtra bool `json:"is_extra" gorm:"default:false"`

	Name   string  `json:"name" gorm:"size:256;not null"`
	Unit   string  `json:"unit" gorm:"size:20"`
	Amount float64 `json:"amount" gorm:"type:decimal(14,4);not null;default:0"`
	Price  float64 `json:"price" gorm:"type:decimal(14,4);not null;default:0"`

	BkAmount *float64 `json:"bk_amount" gorm:"type:decimal(14,4)"`
	BkPrice  *float64 `json:"bk_price" gorm:"type:decimal(14,4)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project       *Project              `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	PurchaseOrder *ProjectPurchaseOrder `json:"purchase_order,omitempty" gorm:"foreignKey:ProjectPurchaseOrderID"`
	VOAdd         *ProjectVO            `json:"vo_add,omitempty" gorm:"foreignKey:VOAddID"`
	VODelete      *ProjectVO            `json:"vo_delete,omitempty" gorm:"foreignKey:VODeleteID"`
	Vendor        *Vendor               `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (ProjectCostItem) TableName() string {
	return "project_cost_items"
}

// ProjectCostModification records one proposed change to a cost item.
// At most one WAITING row may exist per cost item at a time.
type ProjectCostModification struct {
	ID                string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID         string  `json:"project_id" gorm:"size:32;not null;index"`
	ProjectCostItemID string  `json:"project_cost_item_id" gorm:"size:32;not null;index"`
	OldAmount         float64 `json:"old_amount" gorm:"type:decimal(14,4);not null"`
	OldPrice          float64 `json:"old_price" gorm:"type:decimal(14,4);not null"`
	NewAmount         float64 `json:"new_amount" gorm:"type:decimal(14,4);not null"`
	NewPrice          float64 `json:"new_price" gorm:"type:decimal(14,4);not null"`
	IsNewItem         bool    `json:"is_new_item" gorm:"default:false"`
	Status            string  `json:"status" gorm:"size:20;not null;default:WAITING;index"`
	Comment           string  `json:"comment" gorm:"type:text"`
	CreatedBy         string  `json:"created_by" gorm:"size:32"`
	ResolvedBy        *string `json:"resolved_by" gorm:"size:32"`

	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	CostItem *ProjectCostItem `json:"cost_item,omitempty" gorm:"foreignKey:ProjectCostItemID"`
}

func (ProjectCostModification) TableName() string {
	return "project_cost_modifications"
}
