package repository

import (
	"errors"

	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// FindByUserAndQuiz 不存在时返回 (nil, nil)
func (r *ProgressRepository) FindByUserAndQuiz(userID, quizID string) (*model.UserQuizProgress, error) {
	var progress model.UserQuizProgress
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// CountParticipantsByDepartment 部门内有进度记录的用户数（去重）
func (r *ProgressRepository) CountParticipantsByDepartment(departmentID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserQuizProgress{}).
		Joins("JOIN users ON users.id = user_quiz_progress.user_id").
		Where("users.department_id = ? AND users.role = ?", departmentID, model.RoleUser).
		Distinct("user_quiz_progress.user_id").
		Count(&count).Error
	return count, err
}
