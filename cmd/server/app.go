/*
 * @Description:
 * @Author: 林远
 * @Date: 2025-10-17 10:35:28
 * @LastEditTime: 2026-07-20 16:40:12
 * @LastEditors: 林远
 */
// folio-app/cmd/server/app.go
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/linkfable/folio-app/internal/app/bootstrap"
	"github.com/linkfable/folio-app/internal/app/listener"
	"github.com/linkfable/folio-app/internal/app/middleware"
	"github.com/linkfable/folio-app/internal/app/task"
	"github.com/linkfable/folio-app/internal/infra/persistence/database"
	"github.com/linkfable/folio-app/internal/infra/persistence/postgres"
	"github.com/linkfable/folio-app/internal/infra/router"
	"github.com/linkfable/folio-app/internal/pkg/event"
	"github.com/linkfable/folio-app/internal/pkg/version"
	"github.com/linkfable/folio-app/pkg/config"
	"github.com/linkfable/folio-app/pkg/constant"
	"github.com/linkfable/folio-app/pkg/domain/repository"
	article_handler "github.com/linkfable/folio-app/pkg/handler/article"
	auth_handler "github.com/linkfable/folio-app/pkg/handler/auth"
	comment_handler "github.com/linkfable/folio-app/pkg/handler/comment"
	rss_handler "github.com/linkfable/folio-app/pkg/handler/rss"
	setting_handler "github.com/linkfable/folio-app/pkg/handler/setting"
	subscriber_handler "github.com/linkfable/folio-app/pkg/handler/subscriber"
	"github.com/linkfable/folio-app/pkg/idgen"
	article_service "github.com/linkfable/folio-app/pkg/service/article"
	"github.com/linkfable/folio-app/pkg/service/auth"
	comment_service "github.com/linkfable/folio-app/pkg/service/comment"
	rss_service "github.com/linkfable/folio-app/pkg/service/rss"
	"github.com/linkfable/folio-app/pkg/service/setting"
	subscriber_service "github.com/linkfable/folio-app/pkg/service/subscriber"
	"github.com/linkfable/folio-app/pkg/service/utility"
)

// App 结构体，用于封装应用的所有核心组件
type App struct {
	cfg           *config.Config
	engine        *gin.Engine
	taskBroker    *task.Broker
	sqlDB         *sql.DB
	appVersion    string
	articleSvc    article_service.Service
	commentSvc    *comment_service.Service
	subscriberSvc *subscriber_service.Service
	mw            *middleware.Middleware
	settingRepo   repository.SettingRepository
	settingSvc    setting.SettingService
	tokenSvc      auth.TokenService
	cacheSvc      utility.CacheService
	eventBus      *event.EventBus
}

func (a *App) PrintBanner() {
	banner := `

      ███████╗ ██████╗ ██╗     ██╗ ██████╗
      ██╔════╝██╔═══██╗██║     ██║██╔═══██╗
      █████╗  ██║   ██║██║     ██║██║   ██║
      ██╔══╝  ██║   ██║██║     ██║██║   ██║
      ██║     ╚██████╔╝███████╗██║╚██████╔╝
      ╚═╝      ╚═════╝ ╚══════╝╚═╝ ╚═════╝

`
	log.Println(banner)
	log.Println("--------------------------------------------------------")
	log.Printf(" Folio - Version: %s", version.GetVersionString())
	log.Println("--------------------------------------------------------")
}

// NewApp 是应用的构造函数，它执行所有的初始化和依赖注入工作
func NewApp() (*App, func(), error) {
	// 在初始化早期获取版本信息
	appVersion := version.GetVersion()

	// --- Phase 1: 加载外部配置 ---
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	// --- Phase 2: 初始化基础设施 ---
	sqlDB, err := database.NewSQLDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("创建数据库连接池失败: %w", err)
	}

	// 尝试连接 Redis（如果失败，将自动降级到内存缓存）
	redisClient, err := database.NewRedisClient(context.Background(), cfg)
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("redis 初始化失败: %w", err)
	}

	// 临时cleanup函数，后面会被完整版本替换
	tempCleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}
	eventBus := event.NewEventBus()

	// --- Phase 3: 初始化数据仓库层 ---
	settingRepo := postgres.NewSettingRepository(sqlDB)
	userRepo := postgres.NewUserRepository(sqlDB)
	articleRepo := postgres.NewArticleRepository(sqlDB)
	commentRepo := postgres.NewCommentRepository(sqlDB)
	subscriberRepo := postgres.NewSubscriberRepository(sqlDB)

	// --- Phase 4: 初始化应用引导程序 ---
	bootstrapper := bootstrap.NewBootstrapper(sqlDB)
	if err := bootstrapper.InitializeDatabase(); err != nil {
		return nil, tempCleanup, fmt.Errorf("数据库初始化失败: %w", err)
	}

	// --- Phase 4.5: 初始化 ID 编码器 ---
	// IDSeed 由引导程序在建库时写入，这里只做加载（存储在数据库中，不可被外部修改）
	idSeed := loadIDSeed(context.Background(), settingRepo)
	if err := idgen.InitSqidsEncoderWithSeed(idSeed); err != nil {
		return nil, tempCleanup, fmt.Errorf("初始化 ID 编码器失败: %w", err)
	}
	log.Println("✅ ID 编码器初始化成功")

	// --- Phase 5: 初始化业务逻辑层 ---
	settingSvc := setting.NewSettingService(settingRepo, eventBus)
	if err := settingSvc.LoadAllSettings(context.Background()); err != nil {
		return nil, tempCleanup, fmt.Errorf("从数据库加载站点配置失败: %w", err)
	}

	// 使用智能缓存工厂，自动选择 Redis 或内存缓存
	cacheSvc := utility.NewCacheServiceWithFallback(redisClient)

	tokenSvc := auth.NewTokenService(userRepo, settingSvc)
	authSvc := auth.NewAuthService(userRepo)
	emailSvc := utility.NewEmailService(settingSvc)

	articleSvc := article_service.NewService(articleRepo, commentRepo, settingSvc, cacheSvc, eventBus)
	commentSvc := comment_service.NewService(commentRepo, articleRepo, settingSvc, cacheSvc, eventBus)
	subscriberSvc := subscriber_service.NewService(subscriberRepo, articleRepo, settingSvc, emailSvc)
	rssSvc := rss_service.NewService(articleSvc, settingSvc, cacheSvc)

	// 初始化任务调度器
	taskBroker := task.NewBroker(articleSvc, subscriberSvc, emailSvc)

	// 注册事件监听器，打通 "事件 -> 后台任务" 的链路
	_ = listener.NewArticlePublishListener(eventBus, taskBroker, rssSvc)
	_ = listener.NewCommentNotifyListener(eventBus, taskBroker)
	_ = listener.NewSettingChangeListener(eventBus, rssSvc)

	// --- Phase 6: 初始化表现层 (Handlers) ---
	mw := middleware.NewMiddleware(tokenSvc)
	authHandler := auth_handler.NewAuthHandler(authSvc, tokenSvc)
	articleHandler := article_handler.NewHandler(articleSvc)
	commentHandler := comment_handler.NewHandler(commentSvc)
	subscriberHandler := subscriber_handler.NewHandler(subscriberSvc)
	settingHandler := setting_handler.NewSettingHandler(settingSvc, emailSvc)
	rssHandler := rss_handler.NewHandler(rssSvc, settingSvc)

	// --- Phase 7: 初始化路由 ---
	appRouter := router.NewRouter(
		authHandler,
		articleHandler,
		commentHandler,
		subscriberHandler,
		settingHandler,
		rssHandler,
		mw,
	)

	// --- Phase 8: 配置 Gin 引擎 ---
	if cfg.GetBool(config.KeyServerDebug) {
		gin.SetMode(gin.DebugMode)
		log.Println("运行模式: Debug (Gin 将打印详细路由日志)")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("运行模式: Release (Gin 启动日志已禁用)")
	}

	engine := gin.Default()
	err = engine.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	if err != nil {
		return nil, tempCleanup, fmt.Errorf("设置信任代理失败: %w", err)
	}
	engine.ForwardedByClientIP = true
	engine.Use(middleware.Cors())
	appRouter.Setup(engine)

	// 将所有初始化好的组件装配到 App 实例中
	app := &App{
		cfg:           cfg,
		engine:        engine,
		taskBroker:    taskBroker,
		sqlDB:         sqlDB,
		appVersion:    appVersion,
		articleSvc:    articleSvc,
		commentSvc:    commentSvc,
		subscriberSvc: subscriberSvc,
		mw:            mw,
		settingRepo:   settingRepo,
		settingSvc:    settingSvc,
		tokenSvc:      tokenSvc,
		cacheSvc:      cacheSvc,
		eventBus:      eventBus,
	}

	// 创建cleanup函数
	cleanup := func() {
		log.Println("执行清理操作：关闭数据库连接...")
		sqlDB.Close()

		// 关闭 Redis 连接（如果存在）
		if redisClient != nil {
			log.Println("关闭 Redis 连接...")
			redisClient.Close()
		}
	}

	return app, cleanup, nil
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) Engine() *gin.Engine {
	return a.engine
}

func (a *App) SettingRepository() repository.SettingRepository {
	return a.settingRepo
}

func (a *App) SettingService() setting.SettingService {
	return a.settingSvc
}

func (a *App) Middleware() *middleware.Middleware {
	return a.mw
}

func (a *App) ArticleService() article_service.Service {
	return a.articleSvc
}

func (a *App) DB() *sql.DB {
	return a.sqlDB
}

func (a *App) CacheService() utility.CacheService {
	return a.cacheSvc
}

// TokenService 返回 Token 服务（用于 JWT token 生成和验证）
func (a *App) TokenService() auth.TokenService {
	return a.tokenSvc
}

// EventBus 返回事件总线，用于发布和订阅事件
func (a *App) EventBus() *event.EventBus {
	return a.eventBus
}

// Version 返回应用的版本号
func (a *App) Version() string {
	return a.appVersion
}

// CommentService 返回评论服务
func (a *App) CommentService() *comment_service.Service {
	return a.commentSvc
}

// SubscriberService 返回订阅者服务
func (a *App) SubscriberService() *subscriber_service.Service {
	return a.subscriberSvc
}

func (a *App) Run() error {
	a.taskBroker.RegisterCronJobs()
	a.taskBroker.Start()
	port := a.cfg.GetString(config.KeyServerPort)
	if port == "" {
		port = "8091"
	}
	fmt.Printf("应用程序启动成功，正在监听端口: %s\n", port)

	return a.engine.Run(":" + port)
}

func (a *App) Stop() {
	if a.taskBroker != nil {
		a.taskBroker.Stop()
		log.Println("任务调度器已停止。")
	}
	if a.eventBus != nil {
		a.eventBus.Shutdown()
		log.Println("事件总线已停止。")
	}
}

// loadIDSeed 读取引导程序写入数据库的 IDSeed。
// 空字符串是合法取值，表示老库升级的兼容模式（默认字母表）。
func loadIDSeed(ctx context.Context, settingRepo repository.SettingRepository) string {
	existing, err := settingRepo.FindByKey(ctx, constant.KeyIDSeed.String())
	if err != nil || existing == nil {
		log.Println("⚠️  未找到 IDSeed 配置，使用默认字母表")
		return ""
	}
	if existing.Value != "" {
		log.Println("📦 已从数据库加载 IDSeed")
	} else {
		log.Println("📦 使用兼容模式（默认字母表）")
	}
	return existing.Value
}
