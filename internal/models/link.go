package models

import (
	"time"

	"github.com/google/uuid"
)

type Link struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Profile   string    `json:"profile"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Icon      *string   `json:"icon,omitempty"`
	IsActive  bool      `json:"is_active"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type LinkInput struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Icon  *string `json:"icon,omitempty"`
}

// PositionUpdate состояние одной ссылки в пакетной записи порядка
type PositionUpdate struct {
	ID       uuid.UUID
	IsActive bool
	Position int
}

// LinkSet разбиение ссылок профиля: canvas (активные, упорядоченные) и available (скрытые)
type LinkSet struct {
	Canvas    []Link `json:"canvas"`
	Available []Link `json:"available"`
}

// Icons иконки, доступные для ссылок
var Icons = []string{
	"twitter", "facebook", "instagram", "whatsapp", "linkedin", "github",
	"youtube", "twitch", "discord", "tiktok", "spotify", "medium", "patreon",
	"email", "mobile", "website", "store", "blog", "podcast", "calendar", "link",
}

// IsKnownIcon проверяет, что иконка входит в каталог
func IsKnownIcon(name string) bool {
	for _, icon := range Icons {
		if icon == name {
			return true
		}
	}
	return false
}
