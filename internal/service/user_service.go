package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/pkg/consts"
	"Duet/internal/pkg/redis"
	"Duet/internal/pkg/security"
	"Duet/internal/repository"
	"context"

	"github.com/jinzhu/copier"
)

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error)
	Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error) {
	findUser, err := s.userRepo.GetUserByEmail(ctx, regDTO.Email)
	if err != nil {
		return nil, err
	}
	if findUser != nil {
		return nil, ErrEmailExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        regDTO.Email,
		Username:     regDTO.Username,
		Name:         regDTO.Name,
		PasswordHash: passwordHash,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.toUserDTO(user), nil
}

func (s *UserServiceImpl) Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, credDTO.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err = security.CheckPasswordHash(credDTO.Password, user.PasswordHash); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResultDTO{
		Token: token,
		User:  s.toUserDTO(user),
	}, nil
}

// Logout 将 Token 签名拉黑，有效期对齐 Token 本身的过期时间
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, "1", security.JWTExpirationTime)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.toUserDTO(user), nil
}

func (s *UserServiceImpl) toUserDTO(user *model.User) *dto.UserDTO {
	d := &dto.UserDTO{}
	_ = copier.Copy(d, user)
	return d
}
