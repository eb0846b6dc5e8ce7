package app

import (
	"quiz_game_backend/docs"
	"quiz_game_backend/internal/config"
	"quiz_game_backend/internal/middleware"
	"quiz_game_backend/internal/model"
	"quiz_game_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/auth/logout", c.auth.Logout)
		authGroup.GET("/auth/me", c.auth.GetMe)

		authGroup.GET("/quizzes", c.quiz.GetQuizzes)
		authGroup.GET("/quizzes/:quizId", c.quiz.GetQuizByID)
		authGroup.GET("/quizzes/:quizId/progress", c.quiz.GetQuizProgress)

		authGroup.POST("/sessions", c.game.CreateSession)
		authGroup.GET("/sessions/:sessionId/questions", c.game.GetSessionQuestions)
		authGroup.POST("/sessions/:sessionId/answers", c.game.SubmitAnswer)
		authGroup.POST("/sessions/:sessionId/complete", c.game.CompleteSession)
	}

	// 3. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/stats", c.admin.GetStats)

		admin.GET("/quizzes", c.admin.GetQuizzes)
		admin.POST("/quizzes", c.admin.CreateQuiz)
		admin.PUT("/quizzes/:quizId", c.admin.UpdateQuiz)
		admin.DELETE("/quizzes/:quizId", c.admin.DeleteQuiz)

		admin.GET("/quizzes/:quizId/questions", c.admin.GetQuestions)
		admin.POST("/quizzes/:quizId/questions", c.admin.CreateQuestion)
		admin.DELETE("/quizzes/:quizId/questions", c.admin.DeleteAllQuestions)
		admin.PUT("/questions/:questionId", c.admin.UpdateQuestion)
		admin.DELETE("/questions/:questionId", c.admin.DeleteQuestion)
		admin.POST("/questions/bulk", c.admin.BulkCreateQuestions)

		admin.GET("/departments", c.admin.GetDepartments)
	}
}
