package model

import (
	"encoding/json"
	"time"
)

// Answer 答题记录，(sessionId, questionId) 唯一；重试时原地更新，
// isFirstTryCorrect 在首次写入后不再变化
// swagger:model Answer
type Answer struct {
	UUIDBase
	UserID            string          `gorm:"index;type:varchar(36);not null" json:"userId"`
	SessionID         string          `gorm:"uniqueIndex:idx_session_question;type:varchar(36);not null" json:"sessionId"`
	QuestionID        string          `gorm:"uniqueIndex:idx_session_question;type:varchar(36);not null" json:"questionId"`
	UserAnswer        json.RawMessage `gorm:"type:json;not null" json:"userAnswer"`
	IsCorrect         bool            `gorm:"default:false" json:"isCorrect"`
	AttemptCount      int             `gorm:"default:1" json:"attemptCount"`
	IsFirstTryCorrect bool            `gorm:"default:false" json:"isFirstTryCorrect"`
	AnsweredAt        time.Time       `json:"answeredAt"`
}

func (Answer) TableName() string {
	return "answers"
}
