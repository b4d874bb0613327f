/*
 * @Description: 配置数据操作的契约
 * @Author: 林远
 * @Date: 2025-09-15 13:07:49
 * @LastEditTime: 2025-09-21 18:53:13
 * @LastEditors: 林远
 */
package repository

import (
	"context"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// SettingRepository 定义了配置数据操作的契约
type SettingRepository interface {
	FindByKey(ctx context.Context, key string) (*model.Setting, error)
	Save(ctx context.Context, setting *model.Setting) error
	FindAll(ctx context.Context) ([]*model.Setting, error)
	Update(ctx context.Context, settingsToUpdate map[string]string) error
}
