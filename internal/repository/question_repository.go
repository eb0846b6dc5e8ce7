package repository

import (
	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) CreateBatch(questions []model.Question) (int64, error) {
	result := r.DB.Create(&questions)
	return result.RowsAffected, result.Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, "id = ?", id).Error
	return &question, err
}

func (r *QuestionRepository) ListByQuiz(quizID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("is_lucky_draw asc, `order` asc").
		Find(&questions).Error
	return questions, err
}

// CountByQuiz 普通题和幸运题数量
func (r *QuestionRepository) CountByQuiz(quizID string) (total int64, luckyDraw int64, err error) {
	if err = r.DB.Model(&model.Question{}).
		Where("quiz_id = ? AND is_lucky_draw = ?", quizID, false).
		Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Question{}).
		Where("quiz_id = ? AND is_lucky_draw = ?", quizID, true).
		Count(&luckyDraw).Error
	return
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Delete(&model.Question{}, "id = ?", id).Error
}

func (r *QuestionRepository) DeleteByQuiz(quizID string) (int64, error) {
	result := r.DB.Delete(&model.Question{}, "quiz_id = ?", quizID)
	return result.RowsAffected, result.Error
}
