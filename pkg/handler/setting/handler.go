/*
 * @Description: 站点配置接口
 * @Author: 林远
 * @Date: 2025-09-17 20:41:23
 * @LastEditTime: 2026-04-02 15:27:50
 * @LastEditors: 林远
 */
package setting_handler

import (
	"log"
	"net/http"

	"github.com/linkfable/folio-app/internal/pkg/auth"
	"github.com/linkfable/folio-app/pkg/idgen"
	"github.com/linkfable/folio-app/pkg/response"
	"github.com/linkfable/folio-app/pkg/service/setting"
	"github.com/linkfable/folio-app/pkg/service/utility"

	"github.com/gin-gonic/gin"
)

// SettingHandler 封装了站点配置相关的控制器方法
type SettingHandler struct {
	settingSvc setting.SettingService
	emailSvc   utility.EmailService
}

// NewSettingHandler 是 SettingHandler 的构造函数
func NewSettingHandler(settingSvc setting.SettingService, emailSvc utility.EmailService) *SettingHandler {
	return &SettingHandler{
		settingSvc: settingSvc,
		emailSvc:   emailSvc,
	}
}

// TestEmailRequest 定义了测试邮件请求的结构
type TestEmailRequest struct {
	ToEmail string `json:"toEmail" binding:"required,email"`
}

// TestEmail
// @Summary      发送测试邮件
// @Description  根据当前配置发送一封测试邮件到指定地址，用于验证邮件服务是否可用。
// @Tags         设置管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body TestEmailRequest true "测试邮件请求"
// @Success      200 {object} response.Response "成功发送"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      500 {object} response.Response "邮件发送失败"
// @Router       /admin/settings/test-email [post]
func (h *SettingHandler) TestEmail(c *gin.Context) {
	var req TestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	if err := h.emailSvc.SendTestEmail(c.Request.Context(), req.ToEmail); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "发送测试邮件失败: "+err.Error())
		return
	}

	response.Success(c, nil, "测试邮件已发送，请检查收件箱")
}

// GetSiteConfig
// @Summary      获取站点配置
// @Description  获取公开的站点配置信息（无需认证）
// @Tags         站点设置
// @Produce      json
// @Success      200 {object} response.Response "获取成功"
// @Router       /site-config [get]
func (h *SettingHandler) GetSiteConfig(c *gin.Context) {
	siteConfig := h.settingSvc.GetSiteConfig()
	response.Success(c, siteConfig, "获取站点配置成功")
}

// GetSettingsByKeysReq 定义了按键获取配置的请求体结构
type GetSettingsByKeysReq struct {
	Keys []string `json:"keys" binding:"required,min=1"`
}

// GetSettingsByKeys
// @Summary      批量获取配置
// @Description  根据键名列表批量获取配置项（管理员可获取所有配置，其他人只能获取公开配置）
// @Tags         站点设置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body GetSettingsByKeysReq true "配置键名列表"
// @Success      200 {object} response.Response "获取成功"
// @Failure      400 {object} response.Response "参数错误"
// @Router       /admin/settings/get-by-keys [post]
func (h *SettingHandler) GetSettingsByKeys(c *gin.Context) {
	var req GetSettingsByKeysReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: 'keys' 不能为空")
		return
	}

	if isAdminRequest(c) {
		response.Success(c, h.settingSvc.GetByKeys(req.Keys), "获取配置成功")
		return
	}

	// 非管理员只能拿到公开配置
	publicKeys := make([]string, 0, len(req.Keys))
	for _, key := range req.Keys {
		if h.settingSvc.IsPublicSetting(key) {
			publicKeys = append(publicKeys, key)
		}
	}
	settings := map[string]interface{}{}
	if len(publicKeys) > 0 {
		settings = h.settingSvc.GetByKeys(publicKeys)
	}

	response.Success(c, settings, "获取配置成功")
}

// ListSettings
// @Summary      获取全部配置
// @Description  返回全部配置项的扁平键值对（需要管理员权限）
// @Tags         站点设置
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response "获取成功"
// @Router       /admin/settings [get]
func (h *SettingHandler) ListSettings(c *gin.Context) {
	response.Success(c, h.settingSvc.GetAll(), "获取配置成功")
}

// UpdateSettings
// @Summary      批量更新配置
// @Description  批量更新站点配置项（需要管理员权限）
// @Tags         站点设置
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body map[string]string true "配置项键值对"
// @Success      200 {object} response.Response "更新成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      500 {object} response.Response "更新失败"
// @Router       /admin/settings [put]
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var settingsToUpdate map[string]string
	if err := c.ShouldBindJSON(&settingsToUpdate); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数格式错误")
		return
	}

	if len(settingsToUpdate) == 0 {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "没有需要更新的配置项")
		return
	}

	if err := h.settingSvc.UpdateSettings(c.Request.Context(), settingsToUpdate); err != nil {
		log.Printf("更新站点配置时发生错误: %v", err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternalError, "更新配置失败，请查看服务器日志")
		return
	}

	response.Success(c, nil, "更新配置成功")
}

// isAdminRequest 判断当前请求是否来自管理员。
func isAdminRequest(c *gin.Context) bool {
	claimsValue, exists := c.Get(auth.ClaimsKey)
	if !exists {
		return false
	}
	claims, ok := claimsValue.(*auth.CustomClaims)
	if !ok {
		return false
	}
	userGroupID, entityType, err := idgen.DecodePublicID(claims.UserGroupID)
	return err == nil && entityType == idgen.EntityTypeUserGroup && userGroupID == 1
}
