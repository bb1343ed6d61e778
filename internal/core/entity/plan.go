package entity

import (
	"time"
)

// PlanStatus values for payment plans under approval
const (
	PlanStatusProcessing      = "PROCESSING"
	PlanStatusWaitingApproval = "WAITING_APPROVAL"
	PlanStatusApproved        = "APPROVED"
	PlanStatusPaid            = "PAID"
)

// ProjectBillPlan is one tranche of the client billing schedule. The sum of
// target_percent across a project's bill plans never exceeds 100.
type ProjectBillPlan struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID     string     `json:"project_id" gorm:"size:32;not null;index"`
	Name          string     `json:"name" gorm:"size:256;not null"`
	TargetDate    *time.Time `json:"target_date"`
	TargetPercent float64    `json:"target_percent" gorm:"type:decimal(5,2);not null"`
	Status        string     `json:"status" gorm:"size:20;not null;default:PROCESSING"`
	Note          string     `json:"note" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

func (ProjectBillPlan) TableName() string {
	return "project_bill_plans"
}

// ProjectPaymentPlan is one tranche of the vendor payment schedule, subject to
// the same 100 percent allocation rule as bill plans.
type ProjectPaymentPlan struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID     string     `json:"project_id" gorm:"size:32;not null;index"`
	Name          string     `json:"name" gorm:"size:256;not null"`
	TargetDate    *time.Time `json:"target_date"`
	TargetPercent float64    `json:"target_percent" gorm:"type:decimal(5,2);not null"`
	Status        string     `json:"status" gorm:"size:20;not null;default:PROCESSING"`
	Note          string     `json:"note" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Project   *Project               `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Approvers []ProjectPaymentApprover `json:"approvers,omitempty" gorm:"foreignKey:ProjectPaymentPlanID"`
}

func (ProjectPaymentPlan) TableName() string {
	return "project_payment_plans"
}

// ProjectPaymentApprover mirrors the purchase order approver slot shape for
// payment plan sign-off.
type ProjectPaymentApprover struct {
	ID                   string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectPaymentPlanID string  `json:"project_payment_plan_id" gorm:"size:32;not null;index"`
	RoleKey              string  `json:"role_key" gorm:"size:40;not null"`
	UserID               *string `json:"user_id" gorm:"size:32;index"`
	Status               string  `json:"status" gorm:"size:20;not null;default:WAITING_APPROVAL"`
	Comment              string  `json:"comment" gorm:"type:text"`

	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (ProjectPaymentApprover) TableName() string {
	return "project_payment_approvers"
}
