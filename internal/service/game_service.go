package service

import (
	"encoding/json"
	"reflect"
	"time"

	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/internal/util"
)

// Rand 引擎使用的随机源。注入接口而不是直接用全局随机数，
// 测试里可以用固定序列复现幸运题抽取和洗牌结果。*math/rand.Rand 直接满足
type Rand interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// GameService 问答游戏会话引擎：会话生命周期、出题选择、判题、进度推进
type GameService struct {
	Store repository.GameStore
	Rand  Rand
	Now   func() time.Time
}

func NewGameService(store repository.GameStore, rnd Rand) *GameService {
	return &GameService{
		Store: store,
		Rand:  rnd,
		Now:   time.Now,
	}
}

const (
	ActionContinue = "continue"
	ActionQuit     = "quit"
)

type SessionQuestionsResult struct {
	Questions            []model.QuestionForUser `json:"questions"`
	CurrentQuestionIndex int                     `json:"currentQuestionIndex"`
}

type AnswerResult struct {
	IsCorrect     bool            `json:"isCorrect"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
	AttemptCount  int             `json:"attemptCount"`
	CanProceed    bool            `json:"canProceed"`
}

type CompleteSessionResult struct {
	Status      model.SessionStatus `json:"status"`
	NextSession *model.QuizSession  `json:"nextSession,omitempty"`
}

// CreateSession 开始新的一回合。要求活动在有效期内、进度未完结且未达回合上限；
// 进度记录在首次参与时惰性创建
func (s *GameService) CreateSession(userID, quizID string) (*model.QuizSession, error) {
	now := s.Now()
	var created *model.QuizSession

	err := s.Store.InTx(func(tx repository.GameStore) error {
		quiz, err := tx.GetQuiz(quizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return util.ErrQuizNotFound
		}
		if !quiz.Available(now) {
			return util.ErrQuizNotAvailable
		}

		progress, err := tx.GetProgress(userID, quizID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = &model.UserQuizProgress{
				UserID:           userID,
				QuizID:           quizID,
				CurrentRound:     0,
				FirstAttemptDate: &now,
				LastAttemptDate:  &now,
			}
			if err := tx.CreateProgress(progress); err != nil {
				return err
			}
		}

		if progress.IsCompleted {
			return util.ErrQuizAlreadyCompleted
		}
		if progress.CurrentRound >= quiz.MaxRounds {
			return util.ErrMaxRoundsReached
		}

		session := &model.QuizSession{
			UserID:      userID,
			QuizID:      quizID,
			RoundNumber: progress.CurrentRound + 1,
			Status:      model.SessionInProgress,
			StartedAt:   now,
		}
		if err := tx.CreateSession(session); err != nil {
			return err
		}
		created = session
		return nil
	})

	if err != nil {
		return nil, err
	}
	return created, nil
}

// SessionQuestions 为进行中的会话出题。从该用户在本期活动中从未答过的题里选：
// 幸运题触发条件为 correctFirstTry >= 3 且本会话尚未出过幸运题且幸运题池非空，
// 触发后以 roundNumber*0.1 的概率抽取（无上限，回合数 >= 10 时必中）。
// 其余名额从普通题池随机洗牌后截取，不足时返回少于 questionsPerRound 道题
func (s *GameService) SessionQuestions(userID, sessionID string) (*SessionQuestionsResult, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionNotInProgress
	}

	quiz, err := s.Store.GetQuiz(session.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, util.ErrQuizNotFound
	}

	available, err := s.Store.ListUnansweredQuestions(session.QuizID, userID)
	if err != nil {
		return nil, err
	}

	var regular, luckyDraw []model.Question
	for _, q := range available {
		if q.IsLuckyDraw {
			luckyDraw = append(luckyDraw, q)
		} else {
			regular = append(regular, q)
		}
	}

	var selected []model.Question

	shouldShowLuckyDraw := session.CorrectFirstTry >= 3 &&
		!session.LuckyDrawShown &&
		len(luckyDraw) > 0

	if shouldShowLuckyDraw {
		probability := float64(session.RoundNumber) * 0.1
		if s.Rand.Float64() < probability {
			selected = append(selected, luckyDraw[s.Rand.Intn(len(luckyDraw))])

			// 本会话唯一一次 false -> true 翻转，之后不再出幸运题
			if err := s.Store.MarkLuckyDrawShown(session.ID); err != nil {
				return nil, err
			}
		}
	}

	needed := quiz.QuestionsPerRound - len(selected)
	if needed > 0 && len(regular) > 0 {
		s.Rand.Shuffle(len(regular), func(i, j int) {
			regular[i], regular[j] = regular[j], regular[i]
		})
		if needed > len(regular) {
			needed = len(regular)
		}
		selected = append(selected, regular[:needed]...)
	}

	views := make([]model.QuestionForUser, 0, len(selected))
	for _, q := range selected {
		views = append(views, q.ForUser())
	}

	return &SessionQuestionsResult{Questions: views, CurrentQuestionIndex: 0}, nil
}

// SubmitAnswer 判题并记录。首次作答创建 Answer 并递增会话计数器；
// 重试只更新已有记录，计数器不再变动，isFirstTryCorrect 原样保留。
// 整个查改过程在一个事务里执行，(session, question) 上的并发重试不会重复计数
func (s *GameService) SubmitAnswer(userID, sessionID, questionID string, userAnswer json.RawMessage) (*AnswerResult, error) {
	if len(userAnswer) == 0 || !json.Valid(userAnswer) {
		return nil, util.ErrInvalidAnswerPayload
	}

	now := s.Now()
	var result *AnswerResult

	err := s.Store.InTx(func(tx repository.GameStore) error {
		session, err := tx.GetSession(sessionID)
		if err != nil {
			return err
		}
		if session == nil || session.UserID != userID {
			return util.ErrSessionNotFound
		}
		if session.Status != model.SessionInProgress {
			return util.ErrSessionNotInProgress
		}

		question, err := tx.GetQuestion(questionID)
		if err != nil {
			return err
		}
		if question == nil || question.QuizID != session.QuizID {
			return util.ErrQuestionNotFound
		}

		isCorrect, err := answerMatches(userAnswer, question.CorrectAnswer)
		if err != nil {
			return err
		}

		prev, err := tx.GetAnswer(sessionID, questionID)
		if err != nil {
			return err
		}

		var attemptCount int
		if prev == nil {
			// 首次作答：isFirstTryCorrect 在此一次性定型
			attemptCount = 1
			answer := &model.Answer{
				UserID:            userID,
				SessionID:         sessionID,
				QuestionID:        questionID,
				UserAnswer:        userAnswer,
				IsCorrect:         isCorrect,
				AttemptCount:      attemptCount,
				IsFirstTryCorrect: isCorrect,
				AnsweredAt:        now,
			}
			if err := tx.CreateAnswer(answer); err != nil {
				return err
			}
			if err := tx.IncrementSessionCounters(sessionID, isCorrect); err != nil {
				return err
			}
			if isCorrect && question.IsLuckyDraw {
				if err := tx.IncrementLuckyDrawBadges(userID, session.QuizID); err != nil {
					return err
				}
			}
		} else {
			// 重试：只更新提交内容和次数
			attemptCount = prev.AttemptCount + 1
			if err := tx.UpdateAnswerAttempt(prev.ID, userAnswer, isCorrect, attemptCount); err != nil {
				return err
			}
		}

		result = &AnswerResult{
			IsCorrect:    isCorrect,
			Explanation:  question.Explanation,
			AttemptCount: attemptCount,
			CanProceed:   isCorrect,
		}
		if !isCorrect {
			// 答对时不下发正确答案
			result.CorrectAnswer = question.CorrectAnswer
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteSession 终结会话。quit 置为 ABANDONED，进度只刷新时间戳；
// continue 置为 COMPLETED 并推进进度，未达回合上限时立即开启下一回合会话
func (s *GameService) CompleteSession(userID, sessionID, action string) (*CompleteSessionResult, error) {
	if action != ActionContinue && action != ActionQuit {
		return nil, util.ErrInvalidAction
	}

	now := s.Now()
	var result *CompleteSessionResult

	err := s.Store.InTx(func(tx repository.GameStore) error {
		session, err := tx.GetSession(sessionID)
		if err != nil {
			return err
		}
		if session == nil || session.UserID != userID {
			return util.ErrSessionNotFound
		}
		if session.Status != model.SessionInProgress {
			return util.ErrSessionNotInProgress
		}

		quiz, err := tx.GetQuiz(session.QuizID)
		if err != nil {
			return err
		}
		if quiz == nil {
			return util.ErrQuizNotFound
		}

		progress, err := tx.GetProgress(userID, session.QuizID)
		if err != nil {
			return err
		}

		if action == ActionQuit {
			if err := tx.CloseSession(sessionID, model.SessionAbandoned, now); err != nil {
				return err
			}
			if progress != nil {
				if err := tx.TouchProgress(progress.ID, now); err != nil {
					return err
				}
			}
			result = &CompleteSessionResult{Status: model.SessionAbandoned}
			return nil
		}

		if err := tx.CloseSession(sessionID, model.SessionCompleted, now); err != nil {
			return err
		}

		result = &CompleteSessionResult{Status: model.SessionCompleted}
		if progress == nil {
			return nil
		}

		newRound := progress.CurrentRound + 1
		isCompleted := newRound >= quiz.MaxRounds
		if err := tx.AdvanceProgress(progress.ID, newRound, isCompleted, session.QuestionsCount, now); err != nil {
			return err
		}

		if !isCompleted {
			next := &model.QuizSession{
				UserID:      userID,
				QuizID:      session.QuizID,
				RoundNumber: newRound + 1,
				Status:      model.SessionInProgress,
				StartedAt:   now,
			}
			if err := tx.CreateSession(next); err != nil {
				return err
			}
			result.NextSession = next
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GameService) ownedSession(userID, sessionID string) (*model.QuizSession, error) {
	session, err := s.Store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

// answerMatches 按 JSON 结构相等判题，不做部分给分。提交内容解析失败视为
// 载荷格式错误，存储的标准答案解析失败属于数据损坏，原样上抛
func answerMatches(submitted, correct json.RawMessage) (bool, error) {
	var a, b interface{}
	if err := json.Unmarshal(submitted, &a); err != nil {
		return false, util.ErrInvalidAnswerPayload
	}
	if err := json.Unmarshal(correct, &b); err != nil {
		return false, err
	}
	return reflect.DeepEqual(a, b), nil
}
