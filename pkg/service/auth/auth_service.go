/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-11 12:03:48
 * @LastEditTime: 2026-03-15 11:40:26
 * @LastEditors: 林远
 */
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/linkfable/folio-app/internal/pkg/security"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// AuthService 定义了认证相关的业务逻辑接口
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

// authService 是 AuthService 接口的实现
type authService struct {
	userRepo repository.UserRepository
}

// NewAuthService 是 authService 的构造函数
func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{
		userRepo: userRepo,
	}
}

// Login 实现了用户登录的完整业务逻辑
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, error) {
	// 统一将email转换为小写
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("数据库查询失败: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("账号或密码错误")
	}

	if user.Status == model.UserStatusBanned {
		return nil, fmt.Errorf("您的账户已被封禁，请联系管理员")
	}

	if !security.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("账号或密码错误")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		fmt.Printf("警告: 更新用户 '%s' 的最后登录时间失败: %v\n", user.Username, err)
	}

	return user, nil
}

// GetUserByID 通过用户ID获取用户信息
func (s *authService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户信息失败: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("用户不存在")
	}
	return user, nil
}
