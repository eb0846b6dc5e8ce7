package controller

import (
	"quiz_game_backend/internal/service"
	"quiz_game_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// @Summary 活动列表（含我的进度）
// @Tags 活动
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /quizzes [get]
func (c *QuizController) GetQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListQuizzes(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"quizzes": quizzes})
}

// @Summary 活动详情
// @Tags 活动
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /quizzes/{quizId} [get]
func (c *QuizController) GetQuizByID(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.GetQuiz(claims.UserID, ctx.Param("quizId"))
	if err != nil {
		util.NotFound(ctx, "Quiz not found")
		return
	}

	util.Success(ctx, quiz)
}

// @Summary 我的进度
// @Tags 活动
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /quizzes/{quizId}/progress [get]
func (c *QuizController) GetQuizProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.QuizService.GetProgress(claims.UserID, ctx.Param("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// 尚未参与时返回空进度
	util.Success(ctx, progress)
}
