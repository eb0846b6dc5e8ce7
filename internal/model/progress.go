package model

import "time"

// ButtonStatus 前端入口按钮状态
type ButtonStatus string

const (
	ButtonStart     ButtonStatus = "START"
	ButtonContinue  ButtonStatus = "CONTINUE"
	ButtonCompleted ButtonStatus = "COMPLETED"
)

// UserQuizProgress 每个用户在每期活动中的累计进度，(userId, quizId) 唯一
// swagger:model UserQuizProgress
type UserQuizProgress struct {
	UUIDBase
	UserID                 string     `gorm:"uniqueIndex:idx_user_quiz;type:varchar(36);not null" json:"userId"`
	QuizID                 string     `gorm:"uniqueIndex:idx_user_quiz;type:varchar(36);not null" json:"quizId"`
	CurrentRound           int        `gorm:"default:0" json:"currentRound"`
	TotalQuestionsAnswered int        `gorm:"default:0" json:"totalQuestionsAnswered"`
	LuckyDrawBadges        int        `gorm:"default:0" json:"luckyDrawBadges"`
	IsCompleted            bool       `gorm:"default:false" json:"isCompleted"`
	FirstAttemptDate       *time.Time `json:"firstAttemptDate,omitempty"`
	LastAttemptDate        *time.Time `json:"lastAttemptDate,omitempty"`
}

func (UserQuizProgress) TableName() string {
	return "user_quiz_progress"
}

// ButtonStatusFor 根据活动状态和进度计算入口按钮状态
func ButtonStatusFor(quiz *Quiz, progress *UserQuizProgress, now time.Time) ButtonStatus {
	expired := now.After(quiz.EndDate) || now.Equal(quiz.EndDate) || !quiz.IsActive

	switch {
	case expired || (progress != nil && progress.IsCompleted):
		return ButtonCompleted
	case progress == nil || progress.CurrentRound == 0:
		return ButtonStart
	default:
		return ButtonContinue
	}
}
