package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/npomfret/splitifyd-sub010/config"
)

var Redis *redis.Client

func ConnectRedis() {
	opts, err := redis.ParseURL(config.AppConfig.RedisURL)
	if err != nil {
		log.Println("Invalid REDIS_URL, running without cache:", err)
		return
	}

	Redis = redis.NewClient(opts)

	if _, err := Redis.Ping(context.Background()).Result(); err != nil {
		log.Println("Redis not available, running without cache:", err)
		Redis = nil
		return
	}

	log.Println("Redis connected")
}
