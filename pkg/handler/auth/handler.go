// pkg/handler/auth/handler.go
package auth_handler

import (
	"fmt"
	"net/http"
	"time"

	pkgauth "github.com/linkfable/folio-app/internal/pkg/auth"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/response"
	"github.com/linkfable/folio-app/pkg/service/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 封装了所有认证相关的控制器方法
type AuthHandler struct {
	authSvc  auth.AuthService
	tokenSvc auth.TokenService
}

// NewAuthHandler 是 AuthHandler 的构造函数，用于依赖注入
func NewAuthHandler(authSvc auth.AuthService, tokenSvc auth.TokenService) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		tokenSvc: tokenSvc,
	}
}

// LoginRequest 定义了登录请求的结构
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 定义了刷新令牌请求的结构
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserGroupResponse 定义了用户组的响应结构，用于嵌套在用户信息中
type UserGroupResponse struct {
	ID   string `json:"id"` // 用户组的公共ID
	Name string `json:"name"`
}

// UserInfoResponse 定义了返回给客户端的用户信息结构
type UserInfoResponse struct {
	ID          string            `json:"id"` // 用户的公共ID
	Username    string            `json:"username"`
	Nickname    string            `json:"nickname"`
	Avatar      string            `json:"avatar"`
	Email       string            `json:"email"`
	LastLoginAt *time.Time        `json:"lastLoginAt"`
	UserGroup   UserGroupResponse `json:"userGroup"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Login
// @Summary      用户登录
// @Description  管理员通过邮箱和密码登录，返回会话令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=object{userInfo=UserInfoResponse,accessToken=string,refreshToken=string,expires=integer}} "登录成功"
// @Failure      400 {object} response.Response "邮箱或密码格式不正确"
// @Failure      401 {object} response.Response "认证失败"
// @Failure      500 {object} response.Response "内部错误"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "邮箱或密码格式不正确")
		return
	}

	user, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		return
	}

	accessToken, refreshToken, expires, err := h.tokenSvc.GenerateSessionTokens(c.Request.Context(), user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "生成令牌失败: "+err.Error())
		return
	}

	userInfo, err := buildUserInfo(user.ID, user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"userInfo":     userInfo,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"expires":      expires,
	}, "登录成功")
}

// RefreshToken
// @Summary      刷新访问令牌
// @Description  使用刷新令牌换取一个新的访问令牌
// @Tags         用户认证
// @Accept       json
// @Produce      json
// @Param        body body RefreshTokenRequest true "刷新令牌"
// @Success      200 {object} response.Response{data=object{accessToken=string,expires=integer}} "刷新成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "刷新令牌无效或已过期"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	accessToken, expires, err := h.tokenSvc.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
		return
	}

	response.Success(c, gin.H{
		"accessToken": accessToken,
		"expires":     expires,
	}, "令牌已刷新")
}

// Me
// @Summary      获取当前登录用户信息
// @Description  根据访问令牌返回当前用户的详细信息
// @Tags         用户认证
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=UserInfoResponse} "成功响应"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "内部错误"
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claimsValue, exists := c.Get(pkgauth.ClaimsKey)
	if !exists {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "未登录")
		return
	}
	claims, ok := claimsValue.(*pkgauth.CustomClaims)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "登录状态异常")
		return
	}

	userID, entityType, err := idgen.DecodePublicID(claims.UserID)
	if err != nil || entityType != idgen.EntityTypeUser {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "登录状态异常")
		return
	}

	user, err := h.authSvc.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, err.Error())
		return
	}

	userInfo, err := buildUserInfo(userID, user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, err.Error())
		return
	}

	response.Success(c, userInfo, "获取成功")
}

// buildUserInfo 把领域用户对象转换成携带公共ID的响应结构。
func buildUserInfo(userID uint, user *model.User) (*UserInfoResponse, error) {
	publicUserID, err := idgen.GeneratePublicID(userID, idgen.EntityTypeUser)
	if err != nil {
		return nil, fmt.Errorf("生成用户公共ID失败: %w", err)
	}
	publicGroupID, err := idgen.GeneratePublicID(user.UserGroupID, idgen.EntityTypeUserGroup)
	if err != nil {
		return nil, fmt.Errorf("生成用户组公共ID失败: %w", err)
	}

	return &UserInfoResponse{
		ID:          publicUserID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		Avatar:      user.Avatar,
		Email:       user.Email,
		LastLoginAt: user.LastLoginAt,
		UserGroup: UserGroupResponse{
			ID:   publicGroupID,
			Name: user.UserGroup.Name,
		},
		CreatedAt: user.CreatedAt,
	}, nil
}
