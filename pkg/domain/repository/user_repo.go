/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-09-15 13:07:24
 * @LastEditTime: 2026-04-11 18:58:50
 * @LastEditors: 林远
 */
package repository

import (
	"context"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// UserRepository 定义了所有用户数据操作的契约。
type UserRepository interface {
	// 嵌入基础接口，自动获得 FindByID, Create, Update, Delete 等方法
	BaseRepository[model.User]

	// FindByUsername 根据用户名(string)查找用户
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail 根据邮箱(string)查找用户
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Count 统计用户总数
	Count(ctx context.Context) (int64, error)
}
