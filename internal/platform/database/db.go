package database

import (
	"fmt"
	stdlog "log"
	"os"

	"github.com/AniTopia/anitopia-backend/internal/platform/config"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的GORM实例，供各模块的仓库层使用。
var DB *gorm.DB

// InitDB 按配置初始化主存储连接。
// sqlite用于单机部署和测试，postgres用于正式环境。
func InitDB(cfg config.DatabaseConfig) {
	gormLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	var err error
	switch cfg.Driver {
	case "postgres":
		DB, err = gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{Logger: gormLogger})
	case "sqlite", "":
		DB, err = gorm.Open(sqlite.Open(cfg.Sqlite.Path), &gorm.Config{Logger: gormLogger})
	default:
		panic(fmt.Sprintf("未知的数据库驱动: %s", cfg.Driver))
	}

	if err != nil {
		panic("连接数据库失败: " + err.Error())
	}

	log.WithField("driver", cfg.Driver).Info("数据库连接成功")
}
