package service

import (
	"context"
	"errors"
	"time"

	"blog-helper-go/internal/repository"
	"blog-helper-go/pkg/hash"
	"blog-helper-go/pkg/log"
	"blog-helper-go/pkg/token"

	"gorm.io/gorm"
)

// AuthService 接口定义了登录、登出和 token 校验。
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, tokenString string) error
	Authenticate(ctx context.Context, tokenString string) (*token.CustomClaims, error)
}

type authService struct {
	memberRepo repository.MemberRepository
	tokenRepo  repository.TokenRepository
	jwtManager *token.JWTManager
}

// NewAuthService 创建一个新的 AuthService 实例。
func NewAuthService(memberRepo repository.MemberRepository, tokenRepo repository.TokenRepository, jwtManager *token.JWTManager) AuthService {
	return &authService{
		memberRepo: memberRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Login 校验邮箱和密码并签发 access token。邮箱不存在与密码错误返回同一个错误。
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPasswordHash(password, member.Password) {
		log.Warnf("[AuthService] 密码错误, email: %s", email)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(member.ID, member.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: accessToken, Member: NewMemberResponse(member)}, nil
}

// Logout 把 token 加入黑名单，直到它自然过期。
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return ErrInvalidCredentials
	}
	return s.tokenRepo.Blacklist(ctx, tokenString, claims.RemainingTTL(time.Now()))
}

// Authenticate 校验 token 的签名、有效期以及是否已登出。
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*token.CustomClaims, error) {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	blacklisted, err := s.tokenRepo.IsBlacklisted(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}
