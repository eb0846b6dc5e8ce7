package repository

import (
	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type DepartmentRepository struct {
	DB *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{DB: db}
}

func (r *DepartmentRepository) List() ([]model.Department, error) {
	var departments []model.Department
	err := r.DB.Order("`order` asc").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) FindByID(id string) (*model.Department, error) {
	var department model.Department
	err := r.DB.First(&department, "id = ?", id).Error
	return &department, err
}
