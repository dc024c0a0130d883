package models

import (
	"time"

	"github.com/google/uuid"
)

// Visit строка visitor_analytics
type Visit struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	PagePath   string     `json:"page_path"`
	Referrer   string     `json:"referrer"`
	Device     string     `json:"device"`
	Browser    string     `json:"browser"`
	OS         string     `json:"os"`
	VisitedBy  *uuid.UUID `json:"visited_by,omitempty"`
	VisitorKey string     `json:"-"`
	VisitDay   time.Time  `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

// VisitInput данные просмотра публичной страницы
type VisitInput struct {
	PagePath    string
	Referrer    string
	UserAgent   string
	ViewerID    *uuid.UUID
	AnonymousID string
}
