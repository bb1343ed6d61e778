package entity

import (
	"time"
)

// User is a channel member. role_key drives every permission check; the owner
// flag is immutable after creation.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;size:32"`
	Name       string `json:"name" gorm:"size:128;not null"`
	Email      string `json:"email" gorm:"size:128;not null;uniqueIndex"`
	RoleKey    string `json:"role_key" gorm:"size:40;not null;index"`
	IsOwner    bool   `json:"is_owner" gorm:"default:false"`
	IsDisabled bool   `json:"is_disabled" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ProjectApprover holds the quotation approval slots (PM and Sale) created
// when a quotation is submitted.
type ProjectApprover struct {
	ID        string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string  `json:"project_id" gorm:"size:32;not null;index"`
	RoleKey   string  `json:"role_key" gorm:"size:40;not null"`
	UserID    *string `json:"user_id" gorm:"size:32;index"`
	Status    string  `json:"status" gorm:"size:20;not null;default:PROCESSING"`
	Comment   string  `json:"comment" gorm:"type:text"`

	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (ProjectApprover) TableName() string {
	return "project_approvers"
}

// Client is a billing counterpart. Reference data, soft-deleted.
type Client struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:256;not null"`
	ShortName   string `json:"short_name" gorm:"size:64"`
	ContactName string `json:"contact_name" gorm:"size:128"`
	Phone       string `json:"phone" gorm:"size:32"`
	Email       string `json:"email" gorm:"size:128"`
	Address     string `json:"address" gorm:"type:text"`
	TaxNumber   string `json:"tax_number" gorm:"size:64"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Client) TableName() string {
	return "clients"
}

// Vendor is a procurement counterpart. Reference data, soft-deleted.
type Vendor struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:256;not null"`
	ShortName   string `json:"short_name" gorm:"size:64"`
	ContactName string `json:"contact_name" gorm:"size:128"`
	Phone       string `json:"phone" gorm:"size:32"`
	Email       string `json:"email" gorm:"size:128"`
	Address     string `json:"address" gorm:"type:text"`
	TaxNumber   string `json:"tax_number" gorm:"size:64"`
	CategoryID  *string `json:"category_id" gorm:"size:32;index"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Vendor) TableName() string {
	return "vendors"
}

// VendorCategory is simple reference data for grouping vendors.
type VendorCategory struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (VendorCategory) TableName() string {
	return "vendor_categories"
}
