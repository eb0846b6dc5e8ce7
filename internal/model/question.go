package model

import "encoding/json"

// QuestionType 题目类型
type QuestionType string

const (
	FillBlank    QuestionType = "FILL_BLANK"    // 填空选择
	DragAndDrop  QuestionType = "DRAG_AND_DROP" // 拖拽匹配
	TypeSentence QuestionType = "TYPE_SENTENCE" // 句子抄写
	OXQuiz       QuestionType = "OX_QUIZ"       // 判断题
	FindError    QuestionType = "FIND_ERROR"    // 找错词
)

// Question 题目，correctAnswer 的结构取决于题目类型
// swagger:model Question
type Question struct {
	UUIDBase
	QuizID        string          `gorm:"index;type:varchar(36);not null" json:"quizId"`
	Type          QuestionType    `gorm:"size:30;not null" json:"type"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json;not null" json:"correctAnswer"`
	Explanation   string          `gorm:"type:text" json:"explanation"`
	IsLuckyDraw   bool            `gorm:"default:false;index" json:"isLuckyDraw"`
	Order         int             `gorm:"default:0" json:"order"`
	Metadata      json.RawMessage `gorm:"type:json" json:"metadata,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionForUser 下发给玩家的题目视图，不含正确答案
type QuestionForUser struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Content     string          `json:"content"`
	Options     json.RawMessage `json:"options,omitempty"`
	IsLuckyDraw bool            `json:"isLuckyDraw"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// ForUser 去掉答案和解析后的只读视图
func (q *Question) ForUser() QuestionForUser {
	return QuestionForUser{
		ID:          q.ID,
		Type:        q.Type,
		Content:     q.Content,
		Options:     q.Options,
		IsLuckyDraw: q.IsLuckyDraw,
		Metadata:    q.Metadata,
	}
}
