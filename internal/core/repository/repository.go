// Package repository holds the thin data access helpers for the reference
// entities. Core services run their own transactional queries; these wrappers
// back the plain CRUD surface.
package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/datphandbplus/financial-be-sub001/internal/core/entity"
)

type ClientRepository struct{}

func (ClientRepository) List(db *gorm.DB, keyword string, page, size int) ([]entity.Client, int64, error) {
	query := db.Model(&entity.Client{}).Where("deleted_at IS NULL")
	if keyword != "" {
		query = query.Where("name ILIKE ?", "%"+keyword+"%")
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var clients []entity.Client
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&clients).Error
	return clients, total, err
}

func (ClientRepository) GetByID(db *gorm.DB, id string) (*entity.Client, error) {
	var client entity.Client
	err := db.Where("id = ? AND deleted_at IS NULL", id).First(&client).Error
	return &client, err
}

func (ClientRepository) Create(db *gorm.DB, client *entity.Client) error {
	return db.Create(client).Error
}

func (ClientRepository) Update(db *gorm.DB, client *entity.Client) error {
	return db.Save(client).Error
}

func (ClientRepository) SoftDelete(db *gorm.DB, id string) error {
	now := time.Now()
	return db.Model(&entity.Client{}).Where("id = ?", id).Update("deleted_at", now).Error
}

type VendorRepository struct{}

func (VendorRepository) List(db *gorm.DB, keyword, categoryID string, page, size int) ([]entity.Vendor, int64, error) {
	query := db.Model(&entity.Vendor{}).Where("deleted_at IS NULL")
	if keyword != "" {
		query = query.Where("name ILIKE ?", "%"+keyword+"%")
	}
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var vendors []entity.Vendor
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&vendors).Error
	return vendors, total, err
}

func (VendorRepository) GetByID(db *gorm.DB, id string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := db.Where("id = ? AND deleted_at IS NULL", id).First(&vendor).Error
	return &vendor, err
}

func (VendorRepository) Create(db *gorm.DB, vendor *entity.Vendor) error {
	return db.Create(vendor).Error
}

func (VendorRepository) Update(db *gorm.DB, vendor *entity.Vendor) error {
	return db.Save(vendor).Error
}

func (VendorRepository) SoftDelete(db *gorm.DB, id string) error {
	now := time.Now()
	return db.Model(&entity.Vendor{}).Where("id = ?", id).Update("deleted_at", now).Error
}

type UserRepository struct{}

func (UserRepository) List(db *gorm.DB, roleKey string) ([]entity.User, error) {
	query := db.Model(&entity.User{}).Where("is_disabled = ?", false)
	if roleKey != "" {
		query = query.Where("role_key = ?", roleKey)
	}
	var users []entity.User
	err := query.Order("name ASC").Find(&users).Error
	return users, err
}

func (UserRepository) GetByID(db *gorm.DB, id string) (*entity.User, error) {
	var user entity.User
	err := db.Where("id = ?", id).First(&user).Error
	return &user, err
}
