package model

import "time"

// SessionStatus 会话状态机：IN_PROGRESS -> {COMPLETED, ABANDONED}，终态不可逆
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
)

// QuizSession 一次回合挑战
// swagger:model QuizSession
type QuizSession struct {
	UUIDBase
	UserID          string        `gorm:"index;type:varchar(36);not null" json:"userId"`
	QuizID          string        `gorm:"index;type:varchar(36);not null" json:"quizId"`
	RoundNumber     int           `gorm:"not null" json:"roundNumber"`
	Status          SessionStatus `gorm:"size:20;default:'IN_PROGRESS'" json:"status"`
	QuestionsCount  int           `gorm:"default:0" json:"questionsCount"`
	CorrectFirstTry int           `gorm:"default:0" json:"correctFirstTry"`
	LuckyDrawShown  bool          `gorm:"default:false" json:"luckyDrawShown"`
	StartedAt       time.Time     `json:"startedAt"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}
