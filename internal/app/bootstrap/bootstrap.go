// internal/app/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/linkfable/folio-app/internal/configdef"
	"github.com/linkfable/folio-app/internal/infra/persistence/database"
	"github.com/linkfable/folio-app/internal/pkg/security"
	"github.com/linkfable/folio-app/internal/pkg/utils"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/idgen"
)

type Bootstrapper struct {
	db *sql.DB
}

func NewBootstrapper(db *sql.DB) *Bootstrapper {
	return &Bootstrapper{
		db: db,
	}
}

func (b *Bootstrapper) InitializeDatabase() error {
	log.Println("--- 开始执行数据库初始化引导程序 (配置注册表模式) ---")

	migrator := database.NewMigrationService(b.db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("数据库 schema 创建/更新失败: %w", err)
	}
	log.Println("--- 数据库 Schema 同步成功 ---")

	b.syncSettings()
	b.initUserGroups()
	b.ensureIDSeed()
	b.initAdminUser()

	log.Println("--- 数据库初始化引导程序执行完成 ---")
	return nil
}

// syncSettings 检查并同步配置项，确保所有在代码中定义的配置项都存在于数据库中。
func (b *Bootstrapper) syncSettings() {
	log.Println("--- 开始同步站点配置 (Setting 表)... ---")
	ctx := context.Background()
	newlyAdded := 0

	// 从 configdef 循环所有定义
	for _, def := range configdef.AllSettings {
		var exists bool
		err := b.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM settings WHERE config_key = $1)`,
			def.Key.String(),
		).Scan(&exists)
		if err != nil {
			log.Printf("⚠️ 失败: 查询配置项 '%s' 失败: %v", def.Key, err)
			continue
		}

		// 如果配置项在数据库中不存在，则创建它
		if !exists {
			value := def.Value
			// 特殊处理需要动态生成的密钥
			if def.Key == constant.KeyJWTSecret {
				value, _ = utils.GenerateRandomString(32)
			}

			// 检查环境变量覆盖
			envKey := "FOLIO_SETTING_DEFAULT_" + strings.ToUpper(strings.ReplaceAll(string(def.Key), ".", "_"))
			if envValue, ok := os.LookupEnv(envKey); ok {
				value = envValue
				log.Printf("    - 配置项 '%s' 由环境变量覆盖。", def.Key)
			}

			_, createErr := b.db.ExecContext(ctx,
				`INSERT INTO settings (config_key, value, comment) VALUES ($1, $2, $3)`,
				def.Key.String(), value, def.Comment,
			)
			if createErr != nil {
				log.Printf("⚠️ 失败: 新增默认配置项 '%s' 失败: %v", def.Key, createErr)
			} else {
				log.Printf("    -新增配置项: '%s' 已写入数据库。", def.Key)
				newlyAdded++
			}
		}
	}

	if newlyAdded > 0 {
		log.Printf("--- 站点配置同步完成，共新增 %d 个配置项。---", newlyAdded)
	} else {
		log.Println("--- 站点配置同步完成，无需新增配置项。---")
	}
}

// initUserGroups 检查并初始化默认用户组。
func (b *Bootstrapper) initUserGroups() {
	log.Println("--- 开始初始化默认用户组 (UserGroup 表) ---")
	ctx := context.Background()
	for _, groupData := range configdef.AllUserGroups {
		var exists bool
		err := b.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM user_groups WHERE id = $1)`,
			groupData.ID,
		).Scan(&exists)
		if err != nil {
			log.Printf("⚠️ 失败: 查询用户组 ID: %d 失败: %v", groupData.ID, err)
			continue
		}
		if !exists {
			_, createErr := b.db.ExecContext(ctx,
				`INSERT INTO user_groups (id, name, description) VALUES ($1, $2, $3)`,
				groupData.ID, groupData.Name, groupData.Description,
			)
			if createErr != nil {
				log.Printf("⚠️ 失败: 创建默认用户组 '%s' (ID: %d) 失败: %v", groupData.Name, groupData.ID, createErr)
			}
		}
	}

	// 显式指定过主键后要把序列推进到位，否则后续自增会撞键
	if _, err := b.db.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('user_groups', 'id'), (SELECT COALESCE(MAX(id), 1) FROM user_groups))`,
	); err != nil {
		log.Printf("⚠️ 失败: 推进 user_groups 主键序列失败: %v", err)
	}

	log.Println("--- 默认用户组 (UserGroup 表) 初始化完成。---")
}

// ensureIDSeed 确保公共 ID 编码种子存在。
// 必须在创建管理员之前判定：用户表为空视为全新安装，生成随机种子；
// 已有用户则视为老库升级，写入空种子保持既有公共 ID 可解码。
func (b *Bootstrapper) ensureIDSeed() {
	ctx := context.Background()

	var exists bool
	if err := b.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM settings WHERE config_key = $1)`,
		constant.KeyIDSeed.String(),
	).Scan(&exists); err != nil {
		log.Printf("⚠️ 失败: 查询 IDSeed 配置失败: %v", err)
		return
	}
	if exists {
		return
	}

	var userCount int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		log.Printf("警告: 无法查询用户数量: %v，假设为老库升级", err)
		userCount = 1
	}

	var newSeed, comment string
	if userCount > 0 {
		newSeed = ""
		comment = "兼容模式：老库升级，使用默认字母表"
		log.Println("⚠️  检测到老库升级，使用兼容模式（默认字母表）以保持已有ID正常解码")
	} else {
		seed, err := idgen.GenerateRandomSeed()
		if err != nil {
			log.Printf("❌ 错误: 生成随机 IDSeed 失败: %v", err)
			return
		}
		newSeed = seed
		comment = "系统自动生成的ID种子，用于生成唯一的公共ID，请勿修改"
		log.Println("✅ 全新安装，已生成随机 IDSeed")
	}

	if _, err := b.db.ExecContext(ctx,
		`INSERT INTO settings (config_key, value, comment) VALUES ($1, $2, $3)`,
		constant.KeyIDSeed.String(), newSeed, comment,
	); err != nil {
		log.Printf("❌ 错误: 保存 IDSeed 到数据库失败: %v", err)
	}
}

// initAdminUser 在用户表为空时创建初始管理员账户。
// 系统没有开放注册入口，管理员只能由引导程序创建。
func (b *Bootstrapper) initAdminUser() {
	ctx := context.Background()

	var userCount int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		log.Printf("❌ 错误: 查询 User 表记录数量失败: %v", err)
		return
	}
	if userCount > 0 {
		return
	}

	email := os.Getenv("FOLIO_ADMIN_EMAIL")
	if email == "" {
		email = "admin@folio.local"
	}

	password := os.Getenv("FOLIO_ADMIN_PASSWORD")
	generated := false
	if password == "" {
		var err error
		password, err = utils.GenerateRandomString(16)
		if err != nil {
			log.Printf("❌ 错误: 生成管理员初始密码失败: %v", err)
			return
		}
		generated = true
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		log.Printf("❌ 错误: 加密管理员初始密码失败: %v", err)
		return
	}

	_, err = b.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, nickname, email, user_group_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		"admin", hash, "站长", strings.ToLower(email), model.GroupIDAdmin, model.UserStatusActive,
	)
	if err != nil {
		log.Printf("❌ 错误: 创建默认管理员账户失败: %v", err)
		return
	}

	if generated {
		log.Printf("✅ 已创建默认管理员账户 (邮箱: %s)，初始密码: %s", email, password)
		log.Println("⚠️  初始密码只在本次启动日志中出现，请登录后立即修改。")
	} else {
		log.Printf("✅ 已创建默认管理员账户 (邮箱: %s)。", email)
	}
}
