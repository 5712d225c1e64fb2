package config

import (
	"Storefront/models"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 查無資料是正常流程，不記錄
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// 依照driver開啟資料庫連線並建立資料表
func SetupDatabase(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			config.Username,
			config.Password,
			config.Host,
			config.Port,
			config.Database,
		)
		dialector = mysql.Open(dsn)
	case "sqlite":
		path := config.Path
		if path == "" {
			path = "storefront.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(os.Stdout),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if config.Driver == "sqlite" {
		//sqlite同時只能有一個寫入，:memory:也需要共用同一條連線
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}

	return db, nil
}

// 沒有設定addr時回傳nil，商品快取會直接讀資料庫
func SetupRedisConnection(config RedisConfig) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return redisClient, nil
}
