package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PreferenceRepository запоминает выбранный пользователем профиль между сессиями
type PreferenceRepository interface {
	GetSelectedProfile(ctx context.Context, userID uuid.UUID) (string, error)
	SetSelectedProfile(ctx context.Context, userID uuid.UUID, username string) error
	ClearSelectedProfile(ctx context.Context, userID uuid.UUID) error
}

type preferenceRepository struct {
	redis *RedisDB
}

func NewPreferenceRepository(redis *RedisDB) PreferenceRepository {
	return &preferenceRepository{redis: redis}
}

// GetSelectedProfile возвращает пустую строку, если предпочтение не сохранено
func (r *preferenceRepository) GetSelectedProfile(ctx context.Context, userID uuid.UUID) (string, error) {
	username, err := r.redis.Client.Get(ctx, selectedProfileKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get selected profile: %w", err)
	}
	return username, nil
}

func (r *preferenceRepository) SetSelectedProfile(ctx context.Context, userID uuid.UUID, username string) error {
	if err := r.redis.Client.Set(ctx, selectedProfileKey(userID), username, 0).Err(); err != nil {
		return fmt.Errorf("failed to set selected profile: %w", err)
	}
	return nil
}

func (r *preferenceRepository) ClearSelectedProfile(ctx context.Context, userID uuid.UUID) error {
	return r.redis.Client.Del(ctx, selectedProfileKey(userID)).Err()
}

func selectedProfileKey(userID uuid.UUID) string {
	return key("pref", "selected_profile", userID.String())
}
