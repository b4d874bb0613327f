// pkg/handler/comment/handler.go
package comment

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/linkfable/folio-app/internal/pkg/auth"
	"github.com/linkfable/folio-app/pkg/handler/comment/dto"
	"github.com/linkfable/folio-app/pkg/response"
	"github.com/linkfable/folio-app/pkg/service/comment"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *comment.Service
}

func NewHandler(svc *comment.Service) *Handler {
	return &Handler{svc: svc}
}

// Create
// @Summary      提交评论
// @Description  为指定文章提交一条评论或回复，提交后进入待审核状态
// @Tags         公开评论
// @Accept       json
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Param        comment_request body dto.CreateRequest true "评论请求体"
// @Success      201 {object} response.Response{data=dto.CreateResponse} "提交成功，等待审核"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      404 {object} response.Response "文章不存在或未发布"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/blog/{blogId} [post]
func (h *Handler) Create(c *gin.Context) {
	articleID := c.Param("blogId")
	if articleID == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	var req dto.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	ip := c.ClientIP()
	ua := c.Request.UserAgent()

	created, err := h.svc.Create(c.Request.Context(), articleID, &req, ip, ua)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, created, "评论已提交，审核通过后显示")
}

// ListByArticle
// @Summary      获取文章的评论树
// @Description  分页获取指定文章下已通过审核的评论，以树形结构返回
// @Tags         公开评论
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页根评论数" default(10)
// @Param        sortOrder query string false "按时间排序 asc/desc" default(desc)
// @Success      200 {object} response.Response{data=dto.ListResponse} "成功响应"
// @Failure      404 {object} response.Response "文章不存在或未发布"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/blog/{blogId} [get]
func (h *Handler) ListByArticle(c *gin.Context) {
	articleID := c.Param("blogId")
	if articleID == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	sortOrder := c.DefaultQuery("sortOrder", "desc")

	comments, err := h.svc.ListByArticle(c.Request.Context(), articleID, page, pageSize, sortOrder)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, comments, "获取成功")
}

// --- Admin Handlers ---

// ListPending
// @Summary      管理员查询待审核评论
// @Description  分页获取所有待审核的评论
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        limit query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=dto.AdminListResponse} "成功响应"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/pending [get]
func (h *Handler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	pending := "pending"
	req := &dto.AdminListRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   &pending,
	}

	comments, err := h.svc.AdminList(c.Request.Context(), req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, comments, "获取成功")
}

// AdminList
// @Summary      管理员查询评论列表
// @Description  根据状态、关键字等条件分页查询全站评论
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        query query dto.AdminListRequest true "查询参数"
// @Success      200 {object} response.Response{data=dto.AdminListResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments [get]
func (h *Handler) AdminList(c *gin.Context) {
	var req dto.AdminListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	comments, err := h.svc.AdminList(c.Request.Context(), &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, comments, "获取成功")
}

// Moderate
// @Summary      管理员审核单条评论
// @Description  更新指定评论的审核状态，可附带审核备注
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Param        commentId path string true "评论的公共ID"
// @Param        moderate_request body dto.ModerateRequest true "审核请求体"
// @Success      200 {object} response.Response{data=dto.AdminResponse} "审核成功"
// @Failure      400 {object} response.Response "无效的审核状态"
// @Failure      401 {object} response.Response "未授权"
// @Failure      404 {object} response.Response "评论不存在"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/{blogId}/{commentId}/moderate [patch]
func (h *Handler) Moderate(c *gin.Context) {
	articleID := c.Param("blogId")
	commentID := c.Param("commentId")
	if articleID == "" || commentID == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID和评论ID不能为空")
		return
	}

	var req dto.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	moderated, err := h.svc.ModerateOne(c.Request.Context(), articleID, commentID, &req, moderatorID(c))
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, moderated, "审核完成")
}

// BulkModerate
// @Summary      管理员批量审核评论
// @Description  批量通过或拒绝评论，逐条处理并返回每条的结果
// @Tags         评论管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bulk_request body dto.BulkModerateRequest true "批量审核请求体"
// @Success      200 {object} response.Response{data=dto.BulkModerateResult} "处理完成"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/bulk-moderate [patch]
func (h *Handler) BulkModerate(c *gin.Context) {
	var req dto.BulkModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	result, err := h.svc.ModerateBulk(c.Request.Context(), &req, moderatorID(c))
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, fmt.Sprintf("批量审核完成：成功 %d，失败 %d", result.Successful, result.Failed))
}

// Delete
// @Summary      管理员删除评论
// @Description  删除指定评论，存在子回复的评论不允许删除
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Param        commentId path string true "评论的公共ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      400 {object} response.Response "评论存在子回复"
// @Failure      401 {object} response.Response "未授权"
// @Failure      404 {object} response.Response "评论不存在"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/{blogId}/{commentId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	articleID := c.Param("blogId")
	commentID := c.Param("commentId")
	if articleID == "" || commentID == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID和评论ID不能为空")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), articleID, commentID); err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, nil, "评论已删除")
}

// Stats
// @Summary      管理员查看评论统计
// @Description  返回各审核状态的评论数量和近30天的每日新增数
// @Tags         评论管理
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} response.Response{data=model.CommentStats} "成功响应"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /comments/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, stats, "获取成功")
}

// moderatorID 从请求上下文中取出当前管理员的公共ID。
func moderatorID(c *gin.Context) string {
	if v, exists := c.Get(auth.ClaimsKey); exists {
		if claims, ok := v.(*auth.CustomClaims); ok {
			return claims.UserID
		}
	}
	return ""
}
