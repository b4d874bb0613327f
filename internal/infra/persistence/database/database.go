/*
 * @Description: 数据库连接管理 (PostgreSQL)
 * @Author: 林远
 * @Date: 2025-09-12 16:09:46
 * @LastEditTime: 2026-03-30 09:54:27
 * @LastEditors: 林远
 */
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/linkfable/folio-app/pkg/config"

	_ "github.com/lib/pq"
)

// NewSQLDB 创建并返回一个标准的 *sql.DB 连接池。
func NewSQLDB(cfg *config.Config) (*sql.DB, error) {
	dbUser := cfg.GetString(config.KeyDBUser)
	dbPass := cfg.GetString(config.KeyDBPassword)
	dbHost := cfg.GetString(config.KeyDBHost)
	dbPort := cfg.GetString(config.KeyDBPort)
	dbName := cfg.GetString(config.KeyDBName)
	sslMode := cfg.GetString(config.KeyDBSSLMode)

	if dbUser == "" || dbHost == "" || dbPort == "" || dbName == "" {
		return nil, fmt.Errorf("PostgreSQL 连接参数不完整 (需要 User, Host, Port, Name)")
	}
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPass, dbName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 sql.DB 连接失败: %w", err)
	}

	// 设置连接池参数
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	// 验证数据库连接
	if err := db.Ping(); err != nil {
		db.Close() // 如果 ping 失败，关闭连接以释放资源
		return nil, fmt.Errorf("无法 Ping 通数据库 (%s:%s/%s): %w", dbHost, dbPort, dbName, err)
	}

	log.Println("✅ PostgreSQL 数据库连接池创建成功！")
	return db, nil
}
