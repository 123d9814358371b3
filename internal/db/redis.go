package db

import (
	"backend-travelcompanion/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisClientName = "travel-companion"

// ConnectRedis returns the client shared by the read cache and the event
// hub, or nil when no address is configured, which turns both off.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		ClientName: redisClientName,
	})
}
