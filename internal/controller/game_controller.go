package controller

import (
	"encoding/json"

	"quiz_game_backend/internal/service"
	"quiz_game_backend/internal/util"
	"quiz_game_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{GameService: gameService}
}

type CreateSessionRequest struct {
	QuizID string `json:"quizId" binding:"required,uuid"`
}

type SubmitAnswerRequest struct {
	QuestionID string          `json:"questionId" binding:"required,uuid"`
	UserAnswer json.RawMessage `json:"userAnswer" binding:"required"`
}

type CompleteSessionRequest struct {
	Action string `json:"action" binding:"required,oneof=continue quit"`
}

// mapEngineError 引擎错误到状态码：NotFound 一律 404，状态冲突和载荷问题 400
func mapEngineError(ctx *gin.Context, err error) {
	switch {
	case util.IsNotFound(err):
		util.NotFound(ctx, err.Error())
	case util.IsInvalidState(err), err == util.ErrInvalidAnswerPayload, err == util.ErrInvalidAction:
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 开始新回合
// @Tags 游戏
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSessionRequest true "活动ID"
// @Success 201 {object} util.Response
// @Router /sessions [post]
func (c *GameController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.GameService.CreateSession(claims.UserID, req.QuizID)
	if err != nil {
		mapEngineError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 获取本回合题目
// @Tags 游戏
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /sessions/{sessionId}/questions [get]
func (c *GameController) GetSessionQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.GameService.SessionQuestions(claims.UserID, ctx.Param("sessionId"))
	if err != nil {
		mapEngineError(ctx, err)
		return
	}

	for _, q := range result.Questions {
		if q.IsLuckyDraw {
			monitoring.LuckyDrawCounter.Inc()
		}
	}

	util.Success(ctx, result)
}

// @Summary 提交答案
// @Tags 游戏
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Router /sessions/{sessionId}/answers [post]
func (c *GameController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GameService.SubmitAnswer(claims.UserID, ctx.Param("sessionId"), req.QuestionID, req.UserAnswer)
	if err != nil {
		mapEngineError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 完成或中断回合
// @Tags 游戏
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "会话ID"
// @Param body body CompleteSessionRequest true "continue 或 quit"
// @Success 200 {object} util.Response
// @Router /sessions/{sessionId}/complete [post]
func (c *GameController) CompleteSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GameService.CompleteSession(claims.UserID, ctx.Param("sessionId"), req.Action)
	if err != nil {
		mapEngineError(ctx, err)
		return
	}

	monitoring.SessionCounter.WithLabelValues(string(result.Status)).Inc()

	util.Success(ctx, result)
}
