package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
)

// CacheRepository хранит собранную публичную страницу профиля в Redis
type CacheRepository interface {
	GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error)
	SetPublicProfile(ctx context.Context, page *models.PublicProfile, ttl time.Duration) error
	DeletePublicProfile(ctx context.Context, username string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

// GetPublicProfile возвращает redis.Nil при промахе
func (r *cacheRepository) GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	data, err := r.redis.Client.Get(ctx, publicKey(username)).Bytes()
	if err != nil {
		return nil, err
	}

	var page models.PublicProfile
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal public profile: %w", err)
	}

	return &page, nil
}

func (r *cacheRepository) SetPublicProfile(ctx context.Context, page *models.PublicProfile, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal public profile: %w", err)
	}

	return r.redis.Client.Set(ctx, publicKey(page.Profile.Username), data, ttl).Err()
}

func (r *cacheRepository) DeletePublicProfile(ctx context.Context, username string) error {
	return r.redis.Client.Del(ctx, publicKey(username)).Err()
}

func publicKey(username string) string {
	return key("public", strings.ToLower(username))
}
