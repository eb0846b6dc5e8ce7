package controller

import (
	"quiz_game_backend/internal/service"
	"quiz_game_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// @Summary 参与统计
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/stats [get]
func (c *AdminController) GetStats(ctx *gin.Context) {
	stats, err := c.AdminService.GetStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 活动管理列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/quizzes [get]
func (c *AdminController) GetQuizzes(ctx *gin.Context) {
	quizzes, err := c.AdminService.ListQuizzes()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizzes": quizzes})
}

// @Summary 创建活动
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizCreateRequest true "活动信息"
// @Success 201 {object} util.Response
// @Router /admin/quizzes [post]
func (c *AdminController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.AdminService.CreateQuiz(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// @Summary 更新活动
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Param body body service.QuizUpdateRequest true "活动信息"
// @Success 200 {object} util.Response
// @Router /admin/quizzes/{quizId} [put]
func (c *AdminController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.AdminService.UpdateQuiz(ctx.Param("quizId"), req)
	if err == util.ErrQuizNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// @Summary 删除活动
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /admin/quizzes/{quizId} [delete]
func (c *AdminController) DeleteQuiz(ctx *gin.Context) {
	err := c.AdminService.DeleteQuiz(ctx.Param("quizId"))
	if err == util.ErrQuizNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Quiz deleted successfully"})
}

// @Summary 活动题目列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /admin/quizzes/{quizId}/questions [get]
func (c *AdminController) GetQuestions(ctx *gin.Context) {
	questions, err := c.AdminService.ListQuestions(ctx.Param("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions})
}

// @Summary 添加题目
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Param body body service.QuestionInput true "题目信息"
// @Success 201 {object} util.Response
// @Router /admin/quizzes/{quizId}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AdminService.CreateQuestion(ctx.Param("quizId"), input)
	if err == util.ErrQuizNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 更新题目
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "题目ID"
// @Param body body service.QuestionInput true "题目信息"
// @Success 200 {object} util.Response
// @Router /admin/questions/{questionId} [put]
func (c *AdminController) UpdateQuestion(ctx *gin.Context) {
	var input service.QuestionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AdminService.UpdateQuestion(ctx.Param("questionId"), input)
	if err == util.ErrQuestionNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param questionId path string true "题目ID"
// @Success 200 {object} util.Response
// @Router /admin/questions/{questionId} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	err := c.AdminService.DeleteQuestion(ctx.Param("questionId"))
	if err == util.ErrQuestionNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Question deleted successfully"})
}

// @Summary 删除活动全部题目
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "活动ID"
// @Success 200 {object} util.Response
// @Router /admin/quizzes/{quizId}/questions [delete]
func (c *AdminController) DeleteAllQuestions(ctx *gin.Context) {
	count, err := c.AdminService.DeleteAllQuestions(ctx.Param("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": count})
}

type QuestionBulkRequest struct {
	Questions []service.QuestionInput `json:"questions" binding:"required,min=1"`
}

// @Summary 批量导入题目
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId query string true "活动ID"
// @Param body body QuestionBulkRequest true "题目列表"
// @Success 201 {object} util.Response
// @Router /admin/questions/bulk [post]
func (c *AdminController) BulkCreateQuestions(ctx *gin.Context) {
	quizID := ctx.Query("quizId")
	if quizID == "" {
		util.BadRequest(ctx, "Quiz ID is required")
		return
	}

	var req QuestionBulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	count, err := c.AdminService.BulkCreateQuestions(quizID, req.Questions)
	if err == util.ErrQuizNotFound {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"count": count})
}

// @Summary 部门列表
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/departments [get]
func (c *AdminController) GetDepartments(ctx *gin.Context) {
	departments, err := c.AdminService.ListDepartments()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"departments": departments})
}
