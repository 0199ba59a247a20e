package database

import (
	"context"
	"time"

	"parcel-delivery/config"
	"parcel-delivery/logger"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the Redis client backing the refresh-token store.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to redis", err)
		return nil, err
	}
	logger.Success("Successfully connected to redis")

	return client, nil
}
