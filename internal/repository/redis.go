package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/redis/go-redis/v9"
)

// keyPrefix общий префикс ключей приложения в Redis
const keyPrefix = "linkstack"

type RedisDB struct {
	Client *redis.Client
}

// redisOptions собирает опции клиента; REDIS_URL имеет приоритет над host/port
func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.PoolSize = cfg.PoolSize
	if opts.PoolSize <= 0 {
		opts.PoolSize = 100
	}
	opts.MinIdleConns = opts.PoolSize / 10
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second
	return opts, nil
}

func NewRedisClient(cfg config.RedisConfig) (*RedisDB, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDB{Client: client}, nil
}

func (db *RedisDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx).Err()
}

func (db *RedisDB) Close() error {
	return db.Client.Close()
}

// key строит ключ вида linkstack:part1:part2
func key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}
