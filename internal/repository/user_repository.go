package repository

import (
	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Department").First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) FindByEmployeeID(employeeID string) (*model.User, error) {
	var user model.User
	err := r.DB.Preload("Department").Where("employee_id = ?", employeeID).First(&user).Error
	return &user, err
}

func (r *UserRepository) CountByDepartment(departmentID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("department_id = ? AND role = ?", departmentID, model.RoleUser).
		Count(&count).Error
	return count, err
}
