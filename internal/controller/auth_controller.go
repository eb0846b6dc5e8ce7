package controller

import (
	"quiz_game_backend/internal/service"
	"quiz_game_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type LoginRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.EmployeeID, req.Password)
	if err == util.ErrInvalidCredentials {
		util.Error(ctx, 401, "Invalid credentials")
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// @Summary 登出
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	// JWT 无状态，客户端丢弃令牌即可
	util.Success(ctx, gin.H{"message": "Logged out successfully"})
}

// @Summary 当前用户信息
// @Tags 认证
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /auth/me [get]
func (c *AuthController) GetMe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetUser(claims.UserID)
	if err != nil {
		util.NotFound(ctx, "User not found")
		return
	}

	util.Success(ctx, user)
}
