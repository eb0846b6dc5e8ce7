package repository

import (
	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// LuckyDrawWinner 幸运题中奖统计行
type LuckyDrawWinner struct {
	UserName       string `json:"userName"`
	DepartmentName string `json:"departmentName"`
	LuckyDrawCount int64  `json:"luckyDrawCount"`
}

// ListLuckyDrawWinners 首次作答即答对幸运题的用户及次数
func (r *AnswerRepository) ListLuckyDrawWinners() ([]LuckyDrawWinner, error) {
	var winners []LuckyDrawWinner
	err := r.DB.Model(&model.Answer{}).
		Select("users.name AS user_name, departments.name AS department_name, COUNT(answers.id) AS lucky_draw_count").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Joins("JOIN users ON users.id = answers.user_id").
		Joins("JOIN departments ON departments.id = users.department_id").
		Where("questions.is_lucky_draw = ? AND answers.is_first_try_correct = ?", true, true).
		Group("answers.user_id, users.name, departments.name").
		Order("lucky_draw_count desc").
		Scan(&winners).Error
	return winners, err
}
