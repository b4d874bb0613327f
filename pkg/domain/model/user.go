// pkg/domain/model/user.go
package model

import "time"

// ========= 业务常量 (与数据库实现无关) =========

// 用户状态常量定义了用户的几种不同状态
const (
	UserStatusActive = 1
	UserStatusBanned = 2
)

// 用户组ID常量，1号组固定为管理员组
const (
	GroupIDAdmin  uint = 1
	GroupIDReader uint = 2
)

// ========= 领域模型定义 =========

type User struct {
	ID           uint       `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	Avatar       string     `json:"avatar"`
	Email        string     `json:"email"`
	Website      string     `json:"website"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	UserGroupID  uint       `json:"userGroupID"`
	UserGroup    UserGroup  `json:"userGroup"`
	Status       int        `json:"status"`
}

type UserGroup struct {
	ID          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// IsAdmin 检查用户是否属于管理员组。
func (u *User) IsAdmin() bool {
	return u.UserGroupID == GroupIDAdmin
}
