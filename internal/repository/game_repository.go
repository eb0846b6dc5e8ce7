package repository

import (
	"encoding/json"
	"errors"
	"time"

	"quiz_game_backend/internal/model"

	"gorm.io/gorm"
)

// GameStore 游戏引擎依赖的持久化操作。点查询在记录不存在时返回 (nil, nil)，
// I/O 故障才返回 error。InTx 内的所有写入构成一个原子单元
type GameStore interface {
	GetQuiz(id string) (*model.Quiz, error)
	GetQuestion(id string) (*model.Question, error)
	ListUnansweredQuestions(quizID, userID string) ([]model.Question, error)

	GetProgress(userID, quizID string) (*model.UserQuizProgress, error)
	CreateProgress(p *model.UserQuizProgress) error
	AdvanceProgress(id string, currentRound int, isCompleted bool, answeredDelta int, at time.Time) error
	TouchProgress(id string, at time.Time) error
	IncrementLuckyDrawBadges(userID, quizID string) error

	GetSession(id string) (*model.QuizSession, error)
	CreateSession(s *model.QuizSession) error
	MarkLuckyDrawShown(sessionID string) error
	CloseSession(sessionID string, status model.SessionStatus, at time.Time) error
	IncrementSessionCounters(sessionID string, firstTryCorrect bool) error

	GetAnswer(sessionID, questionID string) (*model.Answer, error)
	CreateAnswer(a *model.Answer) error
	UpdateAnswerAttempt(id string, userAnswer json.RawMessage, isCorrect bool, attemptCount int) error

	InTx(fn func(tx GameStore) error) error
}

// GameRepository GameStore 的 gorm 实现。
// 计数器一律用单条 UPDATE 原子自增，不做读改写
type GameRepository struct {
	DB *gorm.DB
}

var _ GameStore = (*GameRepository)(nil)

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{DB: db}
}

func (r *GameRepository) GetQuiz(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *GameRepository) GetQuestion(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListUnansweredQuestions 该用户在本期活动中从未提交过答案的题目
func (r *GameRepository) ListUnansweredQuestions(quizID, userID string) ([]model.Question, error) {
	answered := r.DB.Model(&model.Answer{}).
		Select("answers.question_id").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.user_id = ? AND questions.quiz_id = ?", userID, quizID)

	var questions []model.Question
	err := r.DB.
		Where("quiz_id = ?", quizID).
		Where("id NOT IN (?)", answered).
		Find(&questions).Error
	return questions, err
}

func (r *GameRepository) GetProgress(userID, quizID string) (*model.UserQuizProgress, error) {
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

func (r *GameRepository) CreateProgress(p *model.UserQuizProgress) error {
	return r.DB.Create(p).Error
}

// AdvanceProgress 推进进度。is_completed 用 OR 保证只进不退
func (r *GameRepository) AdvanceProgress(id string, currentRound int, isCompleted bool, answeredDelta int, at time.Time) error {
	return r.DB.Model(&model.UserQuizProgress{}).
		Where("id = ? AND current_round < ?", id, currentRound).
		Updates(map[string]interface{}{
			"current_round":            currentRound,
			"is_completed":             gorm.Expr("is_completed OR ?", isCompleted),
			"total_questions_answered": gorm.Expr("total_questions_answered + ?", answeredDelta),
			"last_attempt_date":        at,
		}).Error
}

func (r *GameRepository) TouchProgress(id string, at time.Time) error {
	return r.DB.Model(&model.UserQuizProgress{}).
		Where("id = ?", id).
		Update("last_attempt_date", at).Error
}

func (r *GameRepository) IncrementLuckyDrawBadges(userID, quizID string) error {
	return r.DB.Model(&model.UserQuizProgress{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Update("lucky_draw_badges", gorm.Expr("lucky_draw_badges + 1")).Error
}

func (r *GameRepository) GetSession(id string) (*model.QuizSession, error) {
	var session model.QuizSession
	err := r.DB.First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GameRepository) CreateSession(s *model.QuizSession) error {
	return r.DB.Create(s).Error
}

// MarkLuckyDrawShown 只允许 false -> true 翻转
func (r *GameRepository) MarkLuckyDrawShown(sessionID string) error {
	return r.DB.Model(&model.QuizSession{}).
		Where("id = ? AND lucky_draw_shown = ?", sessionID, false).
		Update("lucky_draw_shown", true).Error
}

// CloseSession 只有进行中的会话能进入终态
func (r *GameRepository) CloseSession(sessionID string, status model.SessionStatus, at time.Time) error {
	return r.DB.Model(&model.QuizSession{}).
		Where("id = ? AND status = ?", sessionID, model.SessionInProgress).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": at,
		}).Error
}

func (r *GameRepository) IncrementSessionCounters(sessionID string, firstTryCorrect bool) error {
	updates := map[string]interface{}{
		"questions_count": gorm.Expr("questions_count + 1"),
	}
	if firstTryCorrect {
		updates["correct_first_try"] = gorm.Expr("correct_first_try + 1")
	}
	return r.DB.Model(&model.QuizSession{}).
		Where("id = ?", sessionID).
		Updates(updates).Error
}

func (r *GameRepository) GetAnswer(sessionID, questionID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.DB.Where("session_id = ? AND question_id = ?", sessionID, questionID).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *GameRepository) CreateAnswer(a *model.Answer) error {
	return r.DB.Create(a).Error
}

func (r *GameRepository) UpdateAnswerAttempt(id string, userAnswer json.RawMessage, isCorrect bool, attemptCount int) error {
	return r.DB.Model(&model.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_answer":   userAnswer,
			"is_correct":    isCorrect,
			"attempt_count": attemptCount,
		}).Error
}

func (r *GameRepository) InTx(fn func(tx GameStore) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&GameRepository{DB: tx})
	})
}
