// 手动批量导入题目脚本
//
// 批量导入也可通过管理接口 POST /api/admin/questions/bulk 完成。
// 此脚本用于首次部署或离线环境下直接写库。
//
// 用法: go run scripts/seed_questions.go -quiz <活动ID> -file questions.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"quiz_game_backend/internal/config"
	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/pkg/database"
	"quiz_game_backend/pkg/logger"
)

type questionFile struct {
	Questions []struct {
		Type          model.QuestionType `json:"type"`
		Content       string             `json:"content"`
		Options       json.RawMessage    `json:"options,omitempty"`
		CorrectAnswer json.RawMessage    `json:"correctAnswer"`
		Explanation   string             `json:"explanation"`
		IsLuckyDraw   bool               `json:"isLuckyDraw"`
		Order         int                `json:"order"`
		Metadata      json.RawMessage    `json:"metadata,omitempty"`
	} `json:"questions"`
}

func main() {
	quizID := flag.String("quiz", "", "目标活动ID")
	file := flag.String("file", "questions.json", "题目JSON文件路径")
	flag.Parse()

	if *quizID == "" {
		log.Fatal("缺少 -quiz 参数")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取题目文件: %v", err)
	}

	var qf questionFile
	if err := json.Unmarshal(data, &qf); err != nil {
		log.Fatalf("解析题目文件失败: %v", err)
	}
	if len(qf.Questions) == 0 {
		log.Fatal("题目文件为空")
	}

	quizRepo := repository.NewQuizRepository(db)
	if _, err := quizRepo.FindByID(*quizID); err != nil {
		log.Fatalf("活动不存在: %v", err)
	}

	questions := make([]model.Question, 0, len(qf.Questions))
	for _, q := range qf.Questions {
		questions = append(questions, model.Question{
			QuizID:        *quizID,
			Type:          q.Type,
			Content:       q.Content,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			IsLuckyDraw:   q.IsLuckyDraw,
			Order:         q.Order,
			Metadata:      q.Metadata,
		})
	}

	count, err := repository.NewQuestionRepository(db).CreateBatch(questions)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Printf("导入完成，共 %d 道题目", count)
}
