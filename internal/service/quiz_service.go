package service

import (
	"context"
	"encoding/json"
	"time"

	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	quizCountKeyPrefix = "quiz:qcount:"
	quizCountTTL       = 10 * time.Minute
)

// QuizService 面向玩家的活动列表和进度查询
type QuizService struct {
	QuizRepo     *repository.QuizRepository
	QuestionRepo *repository.QuestionRepository
	ProgressRepo *repository.ProgressRepository
	Redis        *redis.Client
}

func NewQuizService(quizRepo *repository.QuizRepository, questionRepo *repository.QuestionRepository, progressRepo *repository.ProgressRepository, rdb *redis.Client) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		QuestionRepo: questionRepo,
		ProgressRepo: progressRepo,
		Redis:        rdb,
	}
}

// ProgressWithButton 进度附带入口按钮状态
type ProgressWithButton struct {
	model.UserQuizProgress
	ButtonStatus model.ButtonStatus `json:"buttonStatus"`
}

// QuizWithProgress 活动及当前用户的进度视图
type QuizWithProgress struct {
	model.Quiz
	TotalQuestions          int64               `json:"totalQuestions"`
	TotalLuckyDrawQuestions int64               `json:"totalLuckyDrawQuestions"`
	Progress                *ProgressWithButton `json:"progress,omitempty"`
}

type questionCounts struct {
	Total     int64 `json:"total"`
	LuckyDraw int64 `json:"luckyDraw"`
}

func (s *QuizService) ListQuizzes(userID string) ([]QuizWithProgress, error) {
	quizzes, err := s.QuizRepo.ListAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]QuizWithProgress, 0, len(quizzes))
	for i := range quizzes {
		view, err := s.buildView(&quizzes[i], userID, now)
		if err != nil {
			return nil, err
		}
		result = append(result, *view)
	}
	return result, nil
}

func (s *QuizService) GetQuiz(userID, quizID string) (*QuizWithProgress, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	return s.buildView(quiz, userID, time.Now())
}

func (s *QuizService) GetProgress(userID, quizID string) (*model.UserQuizProgress, error) {
	return s.ProgressRepo.FindByUserAndQuiz(userID, quizID)
}

func (s *QuizService) buildView(quiz *model.Quiz, userID string, now time.Time) (*QuizWithProgress, error) {
	counts, err := s.countQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}

	progress, err := s.ProgressRepo.FindByUserAndQuiz(userID, quiz.ID)
	if err != nil {
		return nil, err
	}

	view := &QuizWithProgress{
		Quiz:                    *quiz,
		TotalQuestions:          counts.Total,
		TotalLuckyDrawQuestions: counts.LuckyDraw,
	}
	if progress != nil {
		view.Progress = &ProgressWithButton{
			UserQuizProgress: *progress,
			ButtonStatus:     model.ButtonStatusFor(quiz, progress, now),
		}
	}
	return view, nil
}

// countQuestions 题目数量优先走 redis 缓存，管理端变更题目时失效
func (s *QuizService) countQuestions(quizID string) (*questionCounts, error) {
	ctx := context.Background()
	key := quizCountKeyPrefix + quizID

	if val, err := s.Redis.Get(ctx, key).Result(); err == nil {
		var counts questionCounts
		if err := json.Unmarshal([]byte(val), &counts); err == nil {
			return &counts, nil
		}
	} else if err != redis.Nil {
		logger.Log.Warn("Quiz count cache read failed", zap.Error(err))
	}

	total, luckyDraw, err := s.QuestionRepo.CountByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	counts := &questionCounts{Total: total, LuckyDraw: luckyDraw}

	if data, err := json.Marshal(counts); err == nil {
		if err := s.Redis.Set(ctx, key, data, quizCountTTL).Err(); err != nil {
			logger.Log.Warn("Quiz count cache write failed", zap.Error(err))
		}
	}
	return counts, nil
}

// InvalidateQuizCache 题目增删改后由管理端调用
func InvalidateQuizCache(rdb *redis.Client, quizID string) {
	if err := rdb.Del(context.Background(), quizCountKeyPrefix+quizID).Err(); err != nil {
		logger.Log.Warn("Quiz count cache invalidation failed", zap.String("quizId", quizID), zap.Error(err))
	}
}
