package util

import "errors"

// 引擎错误分类。quiz/session/question 缺失与"会话不属于当前用户"统一折叠为
// NotFound 一类，避免暴露他人会话的存在
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")

	ErrQuizNotAvailable     = errors.New("quiz is not available")
	ErrQuizAlreadyCompleted = errors.New("quiz already completed")
	ErrMaxRoundsReached     = errors.New("maximum rounds reached")
	ErrSessionNotInProgress = errors.New("session is not in progress")

	ErrInvalidAnswerPayload = errors.New("invalid answer payload")
	ErrInvalidAction        = errors.New("action must be \"continue\" or \"quit\"")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsNotFound 判断是否属于 NotFound 一类
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

// IsInvalidState 判断是否属于状态冲突一类
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrQuizNotAvailable) ||
		errors.Is(err, ErrQuizAlreadyCompleted) ||
		errors.Is(err, ErrMaxRoundsReached) ||
		errors.Is(err, ErrSessionNotInProgress)
}
