package models

import (
	"time"

	"github.com/google/uuid"
)

// Click строка link_clicks
type Click struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	UserID    uuid.UUID `json:"user_id"`
	Profile   string    `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

// ClickEvent событие клика, которое попадает в очередь процессора
type ClickEvent struct {
	LinkID  uuid.UUID
	OwnerID uuid.UUID
	Profile string
}
