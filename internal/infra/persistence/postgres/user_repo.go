package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// userRepository 是 UserRepository 接口的 PostgreSQL 实现
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 是 userRepository 的构造函数
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `
	u.id, u.created_at, u.updated_at, u.username, u.password_hash,
	u.nickname, u.avatar, u.email, u.website, u.last_login_at,
	u.user_group_id, u.status,
	g.id, g.created_at, g.updated_at, g.name, g.description
`

// scanUser 从带用户组联查的行中扫描出完整的领域模型
func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	var lastLoginAt sql.NullTime
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.PasswordHash,
		&u.Nickname, &u.Avatar, &u.Email, &u.Website, &lastLoginAt,
		&u.UserGroupID, &u.Status,
		&u.UserGroup.ID, &u.UserGroup.CreatedAt, &u.UserGroup.UpdatedAt,
		&u.UserGroup.Name, &u.UserGroup.Description,
	)
	if err != nil {
		return nil, err
	}
	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}
	return u, nil
}

// FindByID 根据主键查找用户，未命中时返回 (nil, nil)
func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN user_groups g ON g.id = u.user_group_id
		WHERE u.id = $1
	`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按ID查询用户失败: %w", err)
	}
	return u, nil
}

// FindByUsername 根据用户名查找用户，未命中时返回 (nil, nil)
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN user_groups g ON g.id = u.user_group_id
		WHERE u.username = $1
	`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按用户名查询用户失败: %w", err)
	}
	return u, nil
}

// FindByEmail 根据邮箱查找用户，未命中时返回 (nil, nil)
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN user_groups g ON g.id = u.user_group_id
		WHERE u.email = $1
	`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("按邮箱查询用户失败: %w", err)
	}
	return u, nil
}

// Create 创建一个新用户并回填数据库生成的字段
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users
			(username, password_hash, nickname, avatar, email, website, user_group_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, u.Username, u.PasswordHash, u.Nickname, u.Avatar, u.Email, u.Website,
		u.UserGroupID, u.Status).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

// Update 整行更新一个已存在的用户
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	var lastLoginAt interface{}
	if u.LastLoginAt != nil {
		lastLoginAt = *u.LastLoginAt
	}
	err := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			username = $1, password_hash = $2, nickname = $3, avatar = $4,
			email = $5, website = $6, last_login_at = $7, user_group_id = $8,
			status = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at
	`, u.Username, u.PasswordHash, u.Nickname, u.Avatar,
		u.Email, u.Website, lastLoginAt, u.UserGroupID,
		u.Status, u.ID).Scan(&u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("更新用户失败: %w", err)
	}
	return nil
}

// Delete 根据主键删除一个用户
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除用户失败: %w", err)
	}
	return nil
}

// Count 统计用户总数
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计用户总数失败: %w", err)
	}
	return count, nil
}
