package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// settingRepository 是 SettingRepository 接口的 PostgreSQL 实现
type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository 是 settingRepository 的构造函数
func NewSettingRepository(db *sql.DB) repository.SettingRepository {
	return &settingRepository{
		db: db,
	}
}

// Update 实现了批量更新配置项的接口
// 为了保证原子性，整个更新过程在一个数据库事务中执行。
func (r *settingRepository) Update(ctx context.Context, settingsToUpdate map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}

	// 确保在发生 panic 时也能回滚
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// 遍历所有需要更新的配置项
	for key, value := range settingsToUpdate {
		_, err := tx.ExecContext(ctx, `
			UPDATE settings SET value = $1, updated_at = now() WHERE config_key = $2
		`, value, key)

		if err != nil {
			// 如果任何一个更新失败，立即回滚并返回错误
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("更新配置失败: %v, 回滚事务也失败: %v", err, rbErr)
			}
			return err
		}
	}

	// 如果所有更新都成功，提交事务
	return tx.Commit()
}

// FindByKey 实现按键查找配置的接口
func (r *settingRepository) FindByKey(ctx context.Context, key string) (*model.Setting, error) {
	s := &model.Setting{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, config_key, value, comment
		FROM settings
		WHERE config_key = $1
	`, key).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.ConfigKey, &s.Value, &s.Comment)
	if err == sql.ErrNoRows {
		return nil, nil // 未找到时不返回错误
	}
	if err != nil {
		return nil, fmt.Errorf("查询配置项失败: %w", err)
	}
	return s, nil
}

// Save 实现保存（创建或更新）配置的接口
func (r *settingRepository) Save(ctx context.Context, s *model.Setting) error {
	// 如果领域模型的 ID 为 0，认为是创建新记录
	if s.ID == 0 {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO settings (config_key, value, comment)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, s.ConfigKey, s.Value, s.Comment).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("创建配置项失败: %w", err)
		}
		return nil
	}

	// 如果 ID 不为 0，认为是更新现有记录
	err := r.db.QueryRowContext(ctx, `
		UPDATE settings SET value = $1, comment = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, s.Value, s.Comment, s.ID).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新配置项失败: %w", err)
	}
	return nil
}

// FindAll 实现获取所有配置的接口
func (r *settingRepository) FindAll(ctx context.Context) ([]*model.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, config_key, value, comment
		FROM settings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("查询配置列表失败: %w", err)
	}
	defer rows.Close()

	var settings []*model.Setting
	for rows.Next() {
		s := &model.Setting{}
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.ConfigKey, &s.Value, &s.Comment); err != nil {
			return nil, fmt.Errorf("扫描配置行失败: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
