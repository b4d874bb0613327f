package auth

import (
	"context"
	"fmt"

	"github.com/linkfable/folio-app/internal/pkg/auth"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/service/setting"
)

type TokenService interface {
	GenerateSessionTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, expiresAt int64, err error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt int64, err error)
	ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error)
}

type tokenService struct {
	userRepo   repository.UserRepository
	settingSvc setting.SettingService
}

// NewTokenService 构造函数
func NewTokenService(
	userRepo repository.UserRepository,
	settingSvc setting.SettingService,
) TokenService {
	return &tokenService{
		userRepo:   userRepo,
		settingSvc: settingSvc,
	}
}

// GenerateSessionTokens 为用户签发一对会话令牌。
// JWT 密钥从配置服务动态获取，首次启动时由 bootstrap 生成并落库。
func (s *tokenService) GenerateSessionTokens(ctx context.Context, user *model.User) (string, string, int64, error) {
	jwtSecret := s.settingSvc.Get(constant.KeyJWTSecret.String())
	if jwtSecret == "" {
		return "", "", 0, fmt.Errorf("JWT_SECRET 未从数据库加载, 无法生成令牌")
	}

	// auth.GenerateToken 接收内部 uint ID，并在内部生成公共 ID
	accessToken, err := auth.GenerateToken(user.ID, user.UserGroupID, []byte(jwtSecret))
	if err != nil {
		return "", "", 0, err
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, []byte(jwtSecret))
	if err != nil {
		return "", "", 0, err
	}

	claims, err := auth.ParseToken(accessToken, []byte(jwtSecret))
	if err != nil {
		return "", "", 0, err
	}
	expiresAt := claims.ExpiresAt.Time.UnixMilli()

	return accessToken, refreshToken, expiresAt, nil
}

// RefreshAccessToken 用刷新令牌换取新的访问令牌
func (s *tokenService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, int64, error) {
	jwtSecret := s.settingSvc.Get(constant.KeyJWTSecret.String())
	if jwtSecret == "" {
		return "", 0, fmt.Errorf("JWT_SECRET 未从数据库加载, 无法刷新令牌")
	}

	claims, err := auth.ParseToken(refreshToken, []byte(jwtSecret))
	if err != nil {
		return "", 0, fmt.Errorf("无效或过期的刷新令牌: %w", err)
	}

	// claims.UserID 是公共ID，需要解码成内部数据库ID并验证类型
	internalUserID, entityType, err := idgen.DecodePublicID(claims.UserID)
	if err != nil {
		return "", 0, fmt.Errorf("解码公共用户ID失败: %w", err)
	}
	if entityType != idgen.EntityTypeUser {
		return "", 0, fmt.Errorf("令牌中的用户ID类型不匹配")
	}

	user, err := s.userRepo.FindByID(ctx, internalUserID)
	if err != nil || user == nil || user.Status != model.UserStatusActive {
		return "", 0, fmt.Errorf("用户不存在或状态异常")
	}

	accessToken, err := auth.GenerateToken(user.ID, user.UserGroupID, []byte(jwtSecret))
	if err != nil {
		return "", 0, err
	}

	newClaims, _ := auth.ParseToken(accessToken, []byte(jwtSecret))
	expiresAt := newClaims.ExpiresAt.Time.UnixMilli()
	return accessToken, expiresAt, nil
}

// ParseAccessToken 负责解析和验证 access token
func (s *tokenService) ParseAccessToken(ctx context.Context, accessToken string) (*auth.CustomClaims, error) {
	jwtSecret := s.settingSvc.Get(constant.KeyJWTSecret.String())
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET 未配置，无法解析令牌")
	}

	return auth.ParseToken(accessToken, []byte(jwtSecret))
}
