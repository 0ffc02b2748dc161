package config

import (
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a client for the booking lock, or nil when
// REDIS_ADDR is unset (single-node deployments fall back to an
// in-process lock).
func ConnectRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, using in-process booking lock")
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}
