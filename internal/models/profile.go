package models

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID          uuid.UUID   `json:"id"`
	Username    string      `json:"username"`
	DisplayName *string     `json:"display_name,omitempty"`
	Bio         *string     `json:"bio,omitempty"`
	AvatarURL   *string     `json:"avatar_url,omitempty"`
	ThemeConfig ThemeConfig `json:"theme_config"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Name возвращает отображаемое имя профиля с откатом на username
func (p Profile) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.Username
}

type CreateProfileInput struct {
	Username    string `json:"username" form:"username" binding:"required"`
	DisplayName string `json:"display_name,omitempty" form:"display_name"`
}

type UpdateProfileInput struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// PublicProfile профиль и его активные ссылки в порядке отображения
type PublicProfile struct {
	Profile Profile `json:"profile"`
	Links   []Link  `json:"links"`
}
