// pkg/handler/subscriber/dto/dto.go
// 订阅接口面向站外访客和旧版前端，字段名统一使用 camelCase。
package dto

import "time"

// PreferencesPayload 是请求中的订阅偏好。
// 指针字段用于区分"未提供"和"显式提供"，更新时只合并提供的字段。
type PreferencesPayload struct {
	Frequency  *string   `json:"frequency" binding:"omitempty,oneof=weekly monthly every_post"`
	Categories *[]string `json:"categories" binding:"omitempty,max=32,dive,min=1,max=64"`
}

// Preferences 是响应中的订阅偏好。
type Preferences struct {
	Frequency  string   `json:"frequency"`
	Categories []string `json:"categories"`
}

// SubscribeRequest 新订阅请求。
type SubscribeRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"omitempty,max=64"`

	// 订阅来源标记，例如 blog_footer，缺省为 api。
	Source string `json:"source" binding:"omitempty,max=32"`

	Preferences *PreferencesPayload `json:"preferences"`
}

// LifecycleResponse 是订阅、确认、退订共用的响应，标记操作后的订阅状态。
type LifecycleResponse struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// PreferencesResponse 是更新偏好后的响应。
type PreferencesResponse struct {
	Email       string      `json:"email"`
	Status      string      `json:"status"`
	Preferences Preferences `json:"preferences"`
}

// AdminListRequest 定义了后台订阅者列表的查询参数。
type AdminListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"limit"`

	// 按订阅状态筛选 (pending/active/unsubscribed/bounced)。
	Status *string `form:"status"`

	// 对邮箱和名字做模糊搜索。
	Search *string `form:"search"`
}

// AdminResponse 是后台订阅者列表的单条记录。
type AdminResponse struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	FirstName      string      `json:"firstName,omitempty"`
	Source         string      `json:"source,omitempty"`
	Status         string      `json:"status"`
	Preferences    Preferences `json:"preferences"`
	EmailsSent     int         `json:"emailsSent"`
	ConfirmedAt    *time.Time  `json:"confirmedAt,omitempty"`
	UnsubscribedAt *time.Time  `json:"unsubscribedAt,omitempty"`
	LastEmailAt    *time.Time  `json:"lastEmailAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// AdminListResponse 是后台订阅者列表的响应。
type AdminListResponse struct {
	List     []*AdminResponse `json:"list"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// SendNewsletterRequest 手动触发文章推送的请求。
// 提供 testEmail 时只向该地址发送一封测试邮件，不会动用订阅者名单。
type SendNewsletterRequest struct {
	BlogID    string  `json:"blogId" binding:"required"`
	TestEmail *string `json:"testEmail" binding:"omitempty,email"`
}

// DispatchResult 是一次推送的聚合结果，发送数与失败数之和等于收件人总数。
type DispatchResult struct {
	TotalRecipients int `json:"totalRecipients"`
	SentCount       int `json:"sentCount"`
	ErrorCount      int `json:"errorCount"`
}
