package service

import (
	"encoding/json"
	"time"

	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// AdminService 活动/题目/部门管理与参与统计
type AdminService struct {
	QuizRepo       *repository.QuizRepository
	QuestionRepo   *repository.QuestionRepository
	DepartmentRepo *repository.DepartmentRepository
	UserRepo       *repository.UserRepository
	ProgressRepo   *repository.ProgressRepository
	AnswerRepo     *repository.AnswerRepository
	Redis          *redis.Client
	DB             *gorm.DB
}

func NewAdminService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	departmentRepo *repository.DepartmentRepository,
	userRepo *repository.UserRepository,
	progressRepo *repository.ProgressRepository,
	answerRepo *repository.AnswerRepository,
	rdb *redis.Client,
	db *gorm.DB,
) *AdminService {
	return &AdminService{
		QuizRepo:       quizRepo,
		QuestionRepo:   questionRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		ProgressRepo:   progressRepo,
		AnswerRepo:     answerRepo,
		Redis:          rdb,
		DB:             db,
	}
}

type QuizCreateRequest struct {
	Title             string    `json:"title" binding:"required"`
	Description       string    `json:"description"`
	StartDate         time.Time `json:"startDate" binding:"required"`
	EndDate           time.Time `json:"endDate" binding:"required"`
	MaxRounds         int       `json:"maxRounds"`
	QuestionsPerRound int       `json:"questionsPerRound"`
}

type QuizUpdateRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	IsActive          *bool      `json:"isActive"`
	MaxRounds         *int       `json:"maxRounds"`
	QuestionsPerRound *int       `json:"questionsPerRound"`
}

type QuestionInput struct {
	Type          model.QuestionType `json:"type" binding:"required"`
	Content       string             `json:"content" binding:"required"`
	Options       json.RawMessage    `json:"options,omitempty"`
	CorrectAnswer json.RawMessage    `json:"correctAnswer" binding:"required"`
	Explanation   string             `json:"explanation"`
	IsLuckyDraw   bool               `json:"isLuckyDraw"`
	Order         int                `json:"order"`
	Metadata      json.RawMessage    `json:"metadata,omitempty"`
}

// DepartmentParticipation 部门参与率统计行
type DepartmentParticipation struct {
	DepartmentName    string  `json:"departmentName"`
	TotalUsers        int64   `json:"totalUsers"`
	ParticipatedUsers int64   `json:"participatedUsers"`
	ParticipationRate float64 `json:"participationRate"`
}

type AdminStats struct {
	DepartmentParticipation []DepartmentParticipation    `json:"departmentParticipation"`
	LuckyDrawStats          []repository.LuckyDrawWinner `json:"luckyDrawStats"`
}

func (s *AdminService) GetStats() (*AdminStats, error) {
	departments, err := s.DepartmentRepo.List()
	if err != nil {
		return nil, err
	}

	participation := make([]DepartmentParticipation, 0, len(departments))
	for _, dept := range departments {
		total, err := s.UserRepo.CountByDepartment(dept.ID)
		if err != nil {
			return nil, err
		}
		participated, err := s.ProgressRepo.CountParticipantsByDepartment(dept.ID)
		if err != nil {
			return nil, err
		}

		rate := 0.0
		if total > 0 {
			rate = float64(participated) / float64(total) * 100
		}
		participation = append(participation, DepartmentParticipation{
			DepartmentName:    dept.Name,
			TotalUsers:        total,
			ParticipatedUsers: participated,
			ParticipationRate: rate,
		})
	}

	winners, err := s.AnswerRepo.ListLuckyDrawWinners()
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		DepartmentParticipation: participation,
		LuckyDrawStats:          winners,
	}, nil
}

func (s *AdminService) ListQuizzes() ([]model.Quiz, error) {
	return s.QuizRepo.ListAll()
}

func (s *AdminService) CreateQuiz(req QuizCreateRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		Title:             req.Title,
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsActive:          true,
		MaxRounds:         req.MaxRounds,
		QuestionsPerRound: req.QuestionsPerRound,
	}
	if quiz.MaxRounds <= 0 {
		quiz.MaxRounds = 3
	}
	if quiz.QuestionsPerRound <= 0 {
		quiz.QuestionsPerRound = 5
	}
	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *AdminService) UpdateQuiz(quizID string, req QuizUpdateRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.StartDate != nil {
		quiz.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		quiz.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
	if req.MaxRounds != nil {
		quiz.MaxRounds = *req.MaxRounds
	}
	if req.QuestionsPerRound != nil {
		quiz.QuestionsPerRound = *req.QuestionsPerRound
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *AdminService) DeleteQuiz(quizID string) error {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return util.ErrQuizNotFound
	}
	// 活动和题目一并删除
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewQuestionRepository(tx).DeleteByQuiz(quizID); err != nil {
			return err
		}
		if err := repository.NewQuizRepository(tx).Delete(quizID); err != nil {
			return err
		}
		InvalidateQuizCache(s.Redis, quizID)
		return nil
	})
}

func (s *AdminService) ListQuestions(quizID string) ([]model.Question, error) {
	return s.QuestionRepo.ListByQuiz(quizID)
}

func (s *AdminService) CreateQuestion(quizID string, input QuestionInput) (*model.Question, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return nil, util.ErrQuizNotFound
	}

	question := &model.Question{
		QuizID:        quizID,
		Type:          input.Type,
		Content:       input.Content,
		Options:       input.Options,
		CorrectAnswer: input.CorrectAnswer,
		Explanation:   input.Explanation,
		IsLuckyDraw:   input.IsLuckyDraw,
		Order:         input.Order,
		Metadata:      input.Metadata,
	}
	if err := s.QuestionRepo.Create(question); err != nil {
		return nil, err
	}
	InvalidateQuizCache(s.Redis, quizID)
	return question, nil
}

func (s *AdminService) UpdateQuestion(questionID string, input QuestionInput) (*model.Question, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}

	question.Type = input.Type
	question.Content = input.Content
	question.Options = input.Options
	question.CorrectAnswer = input.CorrectAnswer
	question.Explanation = input.Explanation
	question.IsLuckyDraw = input.IsLuckyDraw
	question.Order = input.Order
	question.Metadata = input.Metadata

	if err := s.QuestionRepo.Update(question); err != nil {
		return nil, err
	}
	InvalidateQuizCache(s.Redis, question.QuizID)
	return question, nil
}

func (s *AdminService) DeleteQuestion(questionID string) error {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if err := s.QuestionRepo.Delete(questionID); err != nil {
		return err
	}
	InvalidateQuizCache(s.Redis, question.QuizID)
	return nil
}

func (s *AdminService) DeleteAllQuestions(quizID string) (int64, error) {
	count, err := s.QuestionRepo.DeleteByQuiz(quizID)
	if err != nil {
		return 0, err
	}
	InvalidateQuizCache(s.Redis, quizID)
	return count, nil
}

// BulkCreateQuestions 批量导入题目
func (s *AdminService) BulkCreateQuestions(quizID string, inputs []QuestionInput) (int64, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return 0, util.ErrQuizNotFound
	}

	questions := make([]model.Question, 0, len(inputs))
	for _, input := range inputs {
		questions = append(questions, model.Question{
			QuizID:        quizID,
			Type:          input.Type,
			Content:       input.Content,
			Options:       input.Options,
			CorrectAnswer: input.CorrectAnswer,
			Explanation:   input.Explanation,
			IsLuckyDraw:   input.IsLuckyDraw,
			Order:         input.Order,
			Metadata:      input.Metadata,
		})
	}

	count, err := s.QuestionRepo.CreateBatch(questions)
	if err != nil {
		return 0, err
	}
	InvalidateQuizCache(s.Redis, quizID)
	return count, nil
}

func (s *AdminService) ListDepartments() ([]model.Department, error) {
	return s.DepartmentRepo.List()
}
