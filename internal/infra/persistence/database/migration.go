/*
 * @Description: 数据库迁移服务（建表与索引）
 * @Author: 林远
 * @Date: 2025-09-18
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// MigrationService 数据库迁移服务
type MigrationService struct {
	db *sql.DB
}

// NewMigrationService 创建迁移服务
func NewMigrationService(db *sql.DB) *MigrationService {
	return &MigrationService{db: db}
}

// RunMigrations 执行所有迁移。
// 所有语句都是幂等的，应用每次启动时都会完整执行一遍。
func (m *MigrationService) RunMigrations(ctx context.Context) error {
	log.Println("📋 开始执行数据库迁移...")

	if err := m.createAccountTables(ctx); err != nil {
		return fmt.Errorf("账户相关表迁移失败: %w", err)
	}

	if err := m.createContentTables(ctx); err != nil {
		return fmt.Errorf("内容相关表迁移失败: %w", err)
	}

	if err := m.createSubscriberTables(ctx); err != nil {
		return fmt.Errorf("订阅者表迁移失败: %w", err)
	}

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("索引迁移失败: %w", err)
	}

	log.Println("✅ 数据库迁移完成")
	return nil
}

// createAccountTables 创建用户组、用户和配置表
func (m *MigrationService) createAccountTables(ctx context.Context) error {
	log.Println("  → 迁移账户相关表...")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_groups (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			name VARCHAR(64) NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			username VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			nickname VARCHAR(64) NOT NULL DEFAULT '',
			avatar VARCHAR(512) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL UNIQUE,
			website VARCHAR(255) NOT NULL DEFAULT '',
			last_login_at TIMESTAMPTZ,
			user_group_id BIGINT NOT NULL REFERENCES user_groups(id),
			status SMALLINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			config_key VARCHAR(255) NOT NULL UNIQUE,
			value TEXT NOT NULL DEFAULT '',
			comment TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	log.Println("  ✓ 账户相关表就绪")
	return nil
}

// createContentTables 创建文章和评论表
func (m *MigrationService) createContentTables(ctx context.Context) error {
	log.Println("  → 迁移内容相关表...")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			title VARCHAR(255) NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			content_md TEXT NOT NULL DEFAULT '',
			content_html TEXT NOT NULL DEFAULT '',
			cover_url VARCHAR(512) NOT NULL DEFAULT '',
			categories TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(16) NOT NULL DEFAULT 'DRAFT',
			view_count BIGINT NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ,
			scheduled_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			parent_id BIGINT REFERENCES comments(id),
			author_name VARCHAR(64) NOT NULL,
			author_email VARCHAR(255) NOT NULL,
			author_email_md5 VARCHAR(32) NOT NULL DEFAULT '',
			author_website VARCHAR(255),
			author_ip VARCHAR(64) NOT NULL DEFAULT '',
			author_user_agent VARCHAR(512) NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			content_html TEXT NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			moderated_by BIGINT REFERENCES users(id),
			moderated_at TIMESTAMPTZ,
			moderator_note TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	log.Println("  ✓ 内容相关表就绪")
	return nil
}

// createSubscriberTables 创建订阅者表
func (m *MigrationService) createSubscriberTables(ctx context.Context) error {
	log.Println("  → 迁移订阅者表...")

	stmt := `CREATE TABLE IF NOT EXISTS subscribers (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		email VARCHAR(255) NOT NULL UNIQUE,
		first_name VARCHAR(64) NOT NULL DEFAULT '',
		source VARCHAR(64) NOT NULL DEFAULT 'website',
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		confirmation_token_hash VARCHAR(64),
		confirmation_expires_at TIMESTAMPTZ,
		unsubscribe_token VARCHAR(64) UNIQUE,
		preferences JSONB NOT NULL DEFAULT '{}',
		emails_sent INTEGER NOT NULL DEFAULT 0,
		emails_opened INTEGER NOT NULL DEFAULT 0,
		emails_clicked INTEGER NOT NULL DEFAULT 0,
		confirmed_at TIMESTAMPTZ,
		unsubscribed_at TIMESTAMPTZ,
		last_email_at TIMESTAMPTZ
	)`

	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return err
	}

	log.Println("  ✓ 订阅者表就绪")
	return nil
}

// createIndexes 创建查询热路径需要的索引
func (m *MigrationService) createIndexes(ctx context.Context) error {
	log.Println("  → 迁移索引...")

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_categories ON articles USING GIN (categories)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_parent_id ON comments(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_status ON comments(status)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_subscribers_status ON subscribers(status)`,
		`CREATE INDEX IF NOT EXISTS idx_subscribers_confirmation_token_hash ON subscribers(confirmation_token_hash)`,
	}

	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	log.Println("  ✓ 索引就绪")
	return nil
}
