package repository

import (
	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) ListAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at desc").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id string) error {
	return r.DB.Delete(&model.Quiz{}, "id = ?", id).Error
}
