package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/linkstack/internal/analytics"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
)

// AnalyticsService отчёт по кликам и посещениям профиля
type AnalyticsService interface {
	Report(ctx context.Context, userID uuid.UUID, profile string, days int) (*analytics.Report, error)
}

type analyticsService struct {
	clickRepo   repository.ClickRepository
	visitorRepo repository.VisitorRepository
	now         func() time.Time
}

func NewAnalyticsService(clickRepo repository.ClickRepository, visitorRepo repository.VisitorRepository) AnalyticsService {
	return &analyticsService{
		clickRepo:   clickRepo,
		visitorRepo: visitorRepo,
		now:         time.Now,
	}
}

func (s *analyticsService) Report(ctx context.Context, userID uuid.UUID, profile string, days int) (*analytics.Report, error) {
	clicks, err := s.clickRepo.ListByProfile(ctx, userID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}

	visits, err := s.visitorRepo.ListByPage(ctx, userID, "/"+profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	report := analytics.Build(clicks, visits, days, s.now())
	return &report, nil
}
