// pkg/handler/subscriber/handler.go
package subscriber

import (
	"fmt"
	"net/http"

	"github.com/linkfable/folio-app/pkg/handler/subscriber/dto"
	"github.com/linkfable/folio-app/pkg/response"
	"github.com/linkfable/folio-app/pkg/service/subscriber"

	"github.com/gin-gonic/gin"
)

// Handler 订阅功能处理器
type Handler struct {
	svc *subscriber.Service
}

// NewHandler 创建订阅处理器实例
func NewHandler(svc *subscriber.Service) *Handler {
	return &Handler{svc: svc}
}

// Subscribe
// @Summary      订阅博客更新
// @Description  提交邮箱发起订阅，系统会发送一封确认邮件，点击确认后订阅才会生效
// @Tags         订阅
// @Accept       json
// @Produce      json
// @Param        subscribe_request body dto.SubscribeRequest true "订阅请求"
// @Success      200 {object} response.Response{data=dto.LifecycleResponse} "确认邮件已发送"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      409 {object} response.Response "邮箱已订阅"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请输入有效的邮箱地址")
		return
	}

	result, err := h.svc.Subscribe(c.Request.Context(), &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "确认邮件已发送，请查收")
}

// Confirm
// @Summary      确认订阅
// @Description  用户点击确认邮件中的链接，令牌验证通过后订阅生效
// @Tags         订阅
// @Produce      json
// @Param        token path string true "确认令牌"
// @Success      200 {object} response.Response{data=dto.LifecycleResponse} "订阅已生效"
// @Failure      404 {object} response.Response "令牌无效或已过期"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/confirm/{token} [get]
func (h *Handler) Confirm(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "令牌不能为空")
		return
	}

	result, err := h.svc.Confirm(c.Request.Context(), token)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "订阅已生效，欢迎加入")
}

// Unsubscribe
// @Summary      取消订阅
// @Description  用户点击邮件底部的退订链接，通过令牌取消订阅
// @Tags         订阅
// @Produce      json
// @Param        token path string true "退订令牌"
// @Success      200 {object} response.Response{data=dto.LifecycleResponse} "退订成功"
// @Failure      404 {object} response.Response "令牌无效"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/unsubscribe/{token} [post]
func (h *Handler) Unsubscribe(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "令牌不能为空")
		return
	}

	result, err := h.svc.Unsubscribe(c.Request.Context(), token)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "退订成功")
}

// UpdatePreferences
// @Summary      更新订阅偏好
// @Description  通过退订令牌定位订阅者，更新推送频率或关注的分类，只合并提供的字段
// @Tags         订阅
// @Accept       json
// @Produce      json
// @Param        token path string true "退订令牌"
// @Param        preferences body dto.PreferencesPayload true "订阅偏好"
// @Success      200 {object} response.Response{data=dto.PreferencesResponse} "偏好已更新"
// @Failure      400 {object} response.Response "订阅未生效或参数错误"
// @Failure      404 {object} response.Response "令牌无效"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/preferences/{token} [put]
func (h *Handler) UpdatePreferences(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "令牌不能为空")
		return
	}

	var req dto.PreferencesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.UpdatePreferences(c.Request.Context(), token, &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "订阅偏好已更新")
}

// --- Admin Handlers ---

// AdminList
// @Summary      管理员查询订阅者列表
// @Description  根据状态和关键字分页查询订阅者
// @Tags         订阅管理
// @Security     BearerAuth
// @Produce      json
// @Param        query query dto.AdminListRequest true "查询参数"
// @Success      200 {object} response.Response{data=dto.AdminListResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions [get]
func (h *Handler) AdminList(c *gin.Context) {
	var req dto.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	subscribers, err := h.svc.AdminList(c.Request.Context(), &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, subscribers, "获取成功")
}

// Stats
// @Summary      管理员查看订阅统计
// @Description  返回各状态的订阅者数量、累计发信量和近30天的每日新增数
// @Tags         订阅管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.SubscriberStats} "成功响应"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, stats, "获取成功")
}

// SendNewsletter
// @Summary      管理员手动推送文章
// @Description  向所有匹配分类偏好的生效订阅者推送指定文章；携带 testEmail 时只发送一封测试邮件
// @Tags         订阅管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        send_request body dto.SendNewsletterRequest true "推送请求"
// @Success      200 {object} response.Response{data=dto.DispatchResult} "推送完成"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未授权"
// @Failure      404 {object} response.Response "文章不存在或未发布"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /subscriptions/send-newsletter [post]
func (h *Handler) SendNewsletter(c *gin.Context) {
	var req dto.SendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.DispatchNewsletter(c.Request.Context(), &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, fmt.Sprintf("推送完成：发送 %d，失败 %d", result.SentCount, result.ErrorCount))
}
