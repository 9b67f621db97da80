package database

import (
	"context"

	"github.com/AniTopia/anitopia-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RDB 是全局的Redis客户端实例。
var RDB *redis.Client

// Ctx 是Redis操作使用的全局上下文。
var Ctx = context.Background()

// InitRedis 初始化与Redis的连接。
// Redis在本项目中只承担旁路缓存的角色，主存储始终是SQL。
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		panic("无法连接到Redis: " + err.Error())
	}

	log.WithField("address", cfg.Address).Info("Redis连接成功")
}
