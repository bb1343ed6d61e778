package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PurchaseOrderStatus values
const (
	POStatusWaitingApproval = "WAITING_APPROVAL"
	POStatusApproved        = "APPROVED"
	POStatusRejected        = "REJECTED"
	POStatusModified        = "MODIFIED"
)

// ApproverStatus values shared by every approver slot kind
const (
	ApproverStatusProcessing      = "PROCESSING"
	ApproverStatusWaitingApproval = "WAITING_APPROVAL"
	ApproverStatusApproved        = "APPROVED"
	ApproverStatusRejected        = "REJECTED"
)

// Snapshot item modification markers
const (
	SnapshotItemEdited    = "EDITED"
	SnapshotItemRemoved   = "REMOVED"
	SnapshotItemUnchanged = "UNCHANGED"
)

// POSnapshotItem is one cost item entry inside a pending PO edit snapshot.
// Amount/Price are meaningful only when ModifiedStatus is EDITED.
type POSnapshotItem struct {
	ItemID         string  `json:"item_id"`
	ModifiedStatus string  `json:"modified_status"`
	Amount         float64 `json:"amount,omitempty"`
	Price          float64 `json:"price,omitempty"`
}

// POSnapshot is the typed old_data/new_data column. Stored as jsonb.
type POSnapshot []POSnapshotItem

func (s POSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *POSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported snapshot type %T", value)
	}
	return json.Unmarshal(data, s)
}

// ProjectPurchaseOrder groups cost items for procurement and runs the
// multi-approver chain. A MODIFIED order keeps the pre-edit state in old_data
// and the pending edits in new_data until the re-approval round completes.
type ProjectPurchaseOrder struct {
	ID        string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string  `json:"project_id" gorm:"size:32;not null;index"`
	Code      string  `json:"code" gorm:"size:50;not null;uniqueIndex"`
	VendorID  *string `json:"vendor_id" gorm:"size:32;index"`
	Status    string  `json:"status" gorm:"size:20;not null;default:WAITING_APPROVAL;index"`

	DiscountType   string  `json:"discount_type" gorm:"size:2;default:$"`
	DiscountAmount float64 `json:"discount_amount" gorm:"type:decimal(14,2);default:0"`
	VatPercent     float64 `json:"vat_percent" gorm:"type:decimal(5,2);default:0"`

	OldData POSnapshot `json:"old_data,omitempty" gorm:"type:jsonb"`
	NewData POSnapshot `json:"new_data,omitempty" gorm:"type:jsonb"`

	Note          string  `json:"note" gorm:"type:text"`
	AttachmentKey *string `json:"attachment_key" gorm:"size:256"`
	CreatedBy     string  `json:"created_by" gorm:"size:32"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project   *Project                `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Vendor    *Vendor                 `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Approvers []PurchaseOrderApprover `json:"approvers,omitempty" gorm:"foreignKey:ProjectPurchaseOrderID"`
	CostItems []ProjectCostItem       `json:"cost_items,omitempty" gorm:"foreignKey:ProjectPurchaseOrderID"`
}

func (ProjectPurchaseOrder) TableName() string {
	return "project_purchase_orders"
}

// PurchaseOrderApprover is one role-bound approver slot of a purchase order.
// UserID stays nil until someone holding the slot role claims it with a
// decision; rounds restart when the order becomes MODIFIED.
type PurchaseOrderApprover struct {
	ID                     string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectPurchaseOrderID string  `json:"project_purchase_order_id" gorm:"size:32;not null;index"`
	RoleKey                string  `json:"role_key" gorm:"size:40;not null"`
	UserID                 *string `json:"user_id" gorm:"size:32;index"`
	Status                 string  `json:"status" gorm:"size:20;not null;default:WAITING_APPROVAL"`
	Comment                string  `json:"comment" gorm:"type:text"`

	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	PurchaseOrder *ProjectPurchaseOrder `json:"purchase_order,omitempty" gorm:"foreignKey:ProjectPurchaseOrderID"`
	User          *User                 `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (PurchaseOrderApprover) TableName() string {
	return "purchase_order_approvers"
}
