// pkg/handler/article/handler.go
package article

import (
	"net/http"
	"strconv"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/response"
	articleSvc "github.com/linkfable/folio-app/pkg/service/article"

	"github.com/gin-gonic/gin"
)

// Handler 封装了所有与文章相关的 HTTP 处理器。
type Handler struct {
	svc articleSvc.Service
}

// NewHandler 是 Handler 的构造函数。
func NewHandler(svc articleSvc.Service) *Handler {
	return &Handler{svc: svc}
}

// Create
// @Summary      创建文章
// @Description  创建一篇新文章，默认保存为草稿，也可以直接发布或定时发布
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        article body model.CreateArticleRequest true "创建文章的请求体"
// @Success      201 {object} response.Response{data=model.ArticleResponse} "创建成功"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /admin/blogs [post]
func (h *Handler) Create(c *gin.Context) {
	var req model.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	article, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, article, "创建成功")
}

// Get
// @Summary      获取单篇文章
// @Description  根据文章的公共ID获取详细信息，包含草稿和定时文章
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Success      200 {object} response.Response{data=model.ArticleResponse} "成功响应"
// @Failure      404 {object} response.Response "文章未找到"
// @Router       /admin/blogs/{blogId} [get]
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("blogId")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	article, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, article, "获取成功")
}

// Update
// @Summary      更新文章
// @Description  根据文章ID更新文章。正文更新时会重新渲染HTML，摘要留空时会自动重新生成。
// @Tags         文章管理
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Param        article body model.UpdateArticleRequest true "更新文章的请求体"
// @Success      200 {object} response.Response{data=model.ArticleResponse} "成功响应"
// @Failure      400 {object} response.Response "请求参数错误"
// @Failure      404 {object} response.Response "文章未找到"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /admin/blogs/{blogId} [put]
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("blogId")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	var req model.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "请求参数无效: "+err.Error())
		return
	}

	article, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, article, "更新成功")
}

// Delete
// @Summary      删除文章
// @Description  根据文章的公共ID删除文章及其评论
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Success      200 {object} response.Response "成功响应"
// @Failure      404 {object} response.Response "文章未找到"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /admin/blogs/{blogId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("blogId")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, nil, "删除成功")
}

// List
// @Summary      获取文章列表
// @Description  后台分页查询文章，支持按状态、分类和标题关键词过滤
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        pageSize query int false "每页数量" default(10)
// @Param        query query string false "标题关键词"
// @Param        status query string false "文章状态" Enums(DRAFT, PUBLISHED, SCHEDULED)
// @Param        category query string false "分类"
// @Success      200 {object} response.Response{data=model.ArticleListResponse} "成功响应"
// @Failure      401 {object} response.Response "未授权"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /admin/blogs [get]
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))

	options := &model.ListArticlesOptions{
		Page:     page,
		PageSize: pageSize,
		Query:    c.Query("query"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}

	result, err := h.svc.List(c.Request.Context(), options)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "获取列表成功")
}

// Publish
// @Summary      发布文章
// @Description  将指定文章置为已发布。首次发布会触发订阅推送。
// @Tags         文章管理
// @Security     BearerAuth
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Success      200 {object} response.Response{data=model.ArticleResponse} "发布成功"
// @Failure      404 {object} response.Response "文章未找到"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /admin/blogs/{blogId}/publish [post]
func (h *Handler) Publish(c *gin.Context) {
	id := c.Param("blogId")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	article, err := h.svc.Publish(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, article, "文章已发布")
}

// GetPublic
// @Summary      获取单篇公开文章
// @Description  根据文章的公共ID获取已发布文章的详细信息，并累积一次浏览量
// @Tags         公开文章
// @Produce      json
// @Param        blogId path string true "文章的公共ID"
// @Success      200 {object} response.Response{data=model.ArticleResponse} "成功响应"
// @Failure      404 {object} response.Response "文章未找到或未发布"
// @Router       /blogs/{blogId} [get]
func (h *Handler) GetPublic(c *gin.Context) {
	id := c.Param("blogId")
	if id == "" {
		response.Fail(c, http.StatusBadRequest, response.CodeValidationError, "文章ID不能为空")
		return
	}

	article, err := h.svc.GetPublic(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, article, "获取成功")
}

// ListPublic
// @Summary      获取公开文章列表
// @Description  分页获取已发布的文章，不包含正文，支持按分类过滤
// @Tags         公开文章
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        pageSize query int false "每页数量"
// @Param        category query string false "分类"
// @Success      200 {object} response.Response{data=model.ArticleListResponse} "成功响应"
// @Failure      500 {object} response.Response "服务器内部错误"
// @Router       /blogs [get]
func (h *Handler) ListPublic(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	category := c.Query("category")

	result, err := h.svc.ListPublic(c.Request.Context(), page, pageSize, category)
	if err != nil {
		response.FailFromError(c, err)
		return
	}

	response.Success(c, result, "获取列表成功")
}
