package service

import (
	"quiz_game_backend/internal/config"
	"quiz_game_backend/internal/model"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Login 工号加密码登录，停用账号与密码错误同样返回 invalid credentials
func (s *AuthService) Login(employeeID, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmployeeID(employeeID)
	if err != nil || !user.IsActive {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetUser(userID string) (*model.User, error) {
	return s.UserRepo.FindByID(userID)
}
