package model

import "time"

// Quiz 一期知识问答活动，带有效期和回合配置
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	Title             string    `gorm:"size:255;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	StartDate         time.Time `gorm:"not null" json:"startDate"`
	EndDate           time.Time `gorm:"not null" json:"endDate"`
	IsActive          bool      `gorm:"default:true" json:"isActive"`
	MaxRounds         int       `gorm:"default:3" json:"maxRounds"`
	QuestionsPerRound int       `gorm:"default:5" json:"questionsPerRound"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Available 判断当前时间是否在活动窗口内
func (q *Quiz) Available(now time.Time) bool {
	return q.IsActive && !now.Before(q.StartDate) && now.Before(q.EndDate)
}
