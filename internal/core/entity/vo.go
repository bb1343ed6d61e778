package entity

import (
	"time"
)

// VOStatus values
const (
	VOStatusProcessing      = "PROCESSING"
	VOStatusWaitingApproval = "WAITING_APPROVAL"
	VOStatusApproved        = "APPROVED"
	VOStatusRejected        = "REJECTED"
)

// ProjectVO is a variation order: an approved change request that adds or
// removes cost/line items after quotation approval. Cost items reference the
// VO through vo_add_id/vo_delete_id; the ledger only counts those links once
// the VO reaches APPROVED.
type ProjectVO struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string `json:"project_id" gorm:"size:32;not null;index"`
	Code      string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Name      string `json:"name" gorm:"size:256"`
	Status    string `json:"status" gorm:"size:20;not null;default:PROCESSING;index"`

	DiffQuotationTotal float64 `json:"diff_quotation_total" gorm:"type:decimal(14,2);default:0"`
	DiffQuotationVat   float64 `json:"diff_quotation_vat" gorm:"type:decimal(14,2);default:0"`

	Note      string    `json:"note" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project   *Project     `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Approvers []VOApprover `json:"approvers,omitempty" gorm:"foreignKey:ProjectVOID"`
}

func (ProjectVO) TableName() string {
	return "project_vos"
}

// VOApprover mirrors the purchase order approver slot shape.
type VOApprover struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectVOID string  `json:"project_vo_id" gorm:"size:32;not null;index"`
	RoleKey     string  `json:"role_key" gorm:"size:40;not null"`
	UserID      *string `json:"user_id" gorm:"size:32;index"`
	Status      string  `json:"status" gorm:"size:20;not null;default:WAITING_APPROVAL"`
	Comment     string  `json:"comment" gorm:"type:text"`

	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	VO   *ProjectVO `json:"vo,omitempty" gorm:"foreignKey:ProjectVOID"`
	User *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (VOApprover) TableName() string {
	return "vo_approvers"
}
