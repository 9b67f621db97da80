package main

import (
	"net/http"
	"time"

	"github.com/AniTopia/anitopia-backend/api"
	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/dailygame"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/AniTopia/anitopia-backend/internal/platform/cache"
	"github.com/AniTopia/anitopia-backend/internal/platform/config"
	"github.com/AniTopia/anitopia-backend/internal/platform/database"
	"github.com/AniTopia/anitopia-backend/internal/platform/health"
	"github.com/AniTopia/anitopia-backend/internal/platform/shutdown"
	"github.com/AniTopia/anitopia-backend/internal/platform/startup"
	"github.com/AniTopia/anitopia-backend/internal/report"
	"github.com/AniTopia/anitopia-backend/internal/toplist"
	"github.com/AniTopia/anitopia-backend/pkg/lifecycle"
	"github.com/AniTopia/anitopia-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// .env仅用于本地开发，缺席不算错误
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("加载配置失败: " + err.Error())
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	token.GenerateSecretKey()
	logAdminTokens()

	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)

	// 阻塞式获取初始Run ID，拿不到说明Redis不可用，直接失败
	health.InitializeRunID()

	listingCache := cache.NewRedisCache(database.RDB)
	if err := startup.InitializeApplication(database.DB, listingCache); err != nil {
		panic("应用初始化失败，无法启动: " + err.Error())
	}

	gameMediaType, err := catalog.ParseMediaType(cfg.Game.MediaType)
	if err != nil {
		panic("配置中的竞猜媒体类型无效: " + cfg.Game.MediaType)
	}

	// 模块装配
	catalogRepo := catalog.NewRepository(database.DB)
	members := member.NewService(database.DB)
	toplist.ConfigureModule(database.DB, listingCache, catalogRepo, members)
	dailygame.ConfigureModule(database.DB, catalogRepo, gameMediaType)
	report.ConfigureModule(database.DB)

	// 后台任务
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	healthHandle, err := forcefulMgr.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(err)
	}
	go health.StartRedisHealthCheck(healthHandle)

	recomputeHandle, err := gracefulMgr.NewServiceHandle("popularity-recompute")
	if err != nil {
		panic(err)
	}
	go toplist.StartRecomputeWorker(recomputeHandle)

	// HTTP服务器
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, members)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("服务器已准备就绪，开始监听")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("启动服务器失败: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}

// logAdminTokens 打印本进程签发的管理端令牌。
// 密钥不持久化，重启后需要从新日志里重新获取令牌。
func logAdminTokens() {
	for _, scope := range []string{"recompute", "reports"} {
		t, err := token.GenerateAdminToken(scope)
		if err != nil {
			panic("生成管理端令牌失败: " + err.Error())
		}
		log.WithFields(log.Fields{"scope": scope, "token": t}).Info("管理端令牌")
	}
}
