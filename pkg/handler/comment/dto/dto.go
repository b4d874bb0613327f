// pkg/handler/comment/dto/dto.go
package dto

import "time"

// 公开接口的字段名与旧版前端保持兼容，统一使用 camelCase。

// CreateRequest 定义了提交评论的API请求体。
type CreateRequest struct {
	// 父评论的公共ID，顶级评论为 null。
	ParentID *string `json:"parentId"`

	// 评论者的昵称。
	Name string `json:"name" binding:"required,min=1,max=64"`

	// 评论者的邮箱，用于生成头像和管理员联系。
	Email string `json:"email" binding:"required,email"`

	// 评论者的个人网站，可选。
	Website *string `json:"website" binding:"omitempty,url,max=255"`

	// 评论的 Markdown 原文内容。
	Content string `json:"content" binding:"required,min=5,max=1000"`
}

// Response 定义了单条评论节点的公开响应结构。
type Response struct {
	ID          string      `json:"id"`
	ParentID    *string     `json:"parentId,omitempty"`
	Name        string      `json:"name"`
	EmailMD5    string      `json:"emailMd5"`
	Website     *string     `json:"website,omitempty"`
	ContentHTML string      `json:"contentHtml"`
	CreatedAt   time.Time   `json:"createdAt"`
	Children    []*Response `json:"children"`
}

// Pagination 描述评论树的分页信息。
// 总数统计的是过滤后的全部评论（含子回复），而不是根评论数。
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalComments int64 `json:"totalComments"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

// ListResponse 定义了文章评论树的API响应结构。
type ListResponse struct {
	Comments   []*Response `json:"comments"`
	Pagination Pagination  `json:"pagination"`
}

// CreateResponse 是评论提交成功后返回的数据结构。
type CreateResponse struct {
	CommentID string `json:"commentId"`
}

// AdminListRequest 定义了管理员在后台查询评论列表时使用的参数。
type AdminListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"limit"`

	// 按创建时间排序，asc 或 desc，默认 desc。
	SortOrder string `form:"sortOrder"`

	// 按审核状态筛选 (pending/approved/rejected)。
	Status *string `form:"status"`

	// 对评论内容、昵称、邮箱和文章标题做模糊搜索。
	Search *string `form:"search"`
}

// AdminResponse 定义了管理员视图下单条评论的响应结构。
type AdminResponse struct {
	ID            string     `json:"id"`
	ArticleID     string     `json:"articleId"`
	ParentID      *string    `json:"parentId,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Website       *string    `json:"website,omitempty"`
	Content       string     `json:"content"`
	ContentHTML   string     `json:"contentHtml"`
	IPAddress     string     `json:"ipAddress,omitempty"`
	UserAgent     string     `json:"userAgent,omitempty"`
	Status        string     `json:"status"`
	ModeratedBy   *string    `json:"moderatedBy,omitempty"`
	ModeratedAt   *time.Time `json:"moderatedAt,omitempty"`
	ModeratorNote *string    `json:"moderatorNote,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// AdminListResponse 定义了管理员评论列表的API响应结构。
type AdminListResponse struct {
	List     []*AdminResponse `json:"list"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ModerateRequest 定义了审核单条评论的API请求体。
type ModerateRequest struct {
	Status        string  `json:"status" binding:"required"`
	ModeratorNote *string `json:"moderatorNote" binding:"omitempty,max=500"`
}

// BulkCommentRef 定位一条待审核的评论。
type BulkCommentRef struct {
	BlogID    string `json:"blogId" binding:"required"`
	CommentID string `json:"commentId" binding:"required"`
}

// BulkModerateRequest 定义了批量审核的API请求体。
type BulkModerateRequest struct {
	CommentIDs    []BulkCommentRef `json:"commentIds" binding:"required,min=1,max=100"`
	Status        string           `json:"status" binding:"required"`
	ModeratorNote *string          `json:"moderatorNote" binding:"omitempty,max=500"`
}

// BulkModerateItem 是批量审核中单条评论的处理结果。
type BulkModerateItem struct {
	CommentID string `json:"commentId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// BulkModerateResult 定义了批量审核的API响应结构。
// Successful 与 Failed 之和恒等于请求的评论数。
type BulkModerateResult struct {
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Results    []BulkModerateItem `json:"results"`
}
