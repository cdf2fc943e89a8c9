package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/tsuki530/2023-tieba-bk/config"
	"github.com/tsuki530/2023-tieba-bk/internal/model"
)

const serviceName = "tieba-bk"

var (
	db          *gorm.DB
	redisClient *RedisClient
)

// InitDatabase 初始化数据库连接并迁移表结构
func InitDatabase() error {
	cfg := config.Conf

	// 1. 连接 PostgreSQL
	gormDB, err := InitPostgres(&PostgresConfig{
		ServiceName:     serviceName,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		LogLevel:        cfg.Database.LogLevel,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.Database.MaxLifetime) * time.Second,
	})
	if err != nil {
		return err
	}
	db = gormDB

	// 2. 自动迁移表结构
	if err := model.InitTable(db); err != nil {
		return err
	}

	// 3. 连接 Redis，失败时降级运行（浏览量去重功能不可用）
	rdb, err := InitRedis(&RedisConfig{
		ServiceName: serviceName,
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("[%s] Redis不可用，相关功能降级: %v", serviceName, err)
	} else {
		redisClient = rdb
	}

	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return db
}

// GetRedis 获取 Redis 客户端，可能为 nil
func GetRedis() *RedisClient {
	return redisClient
}
