package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/service"
	"github.com/SergeiKhy/linkstack/internal/service/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_Report(t *testing.T) {
	ctx := context.Background()
	clicks := mocks.NewMockClickRepository()
	visits := mocks.NewMockVisitorRepository()
	owner := uuid.New()
	linkID := uuid.New()
	now := time.Now()

	require.NoError(t, clicks.RecordClick(ctx, &models.Click{ID: uuid.New(), LinkID: linkID, UserID: owner, Profile: "john_doe", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, clicks.RecordClick(ctx, &models.Click{ID: uuid.New(), LinkID: linkID, UserID: owner, Profile: "john_doe", CreatedAt: now.Add(-72 * time.Hour)}))
	// Другой профиль того же владельца не попадает в отчёт
	require.NoError(t, clicks.RecordClick(ctx, &models.Click{ID: uuid.New(), LinkID: uuid.New(), UserID: owner, Profile: "other", CreatedAt: now}))

	_, err := visits.Insert(ctx, &models.Visit{ID: uuid.New(), UserID: owner, PagePath: "/john_doe", Device: "Mobile", Browser: "Safari", OS: "iOS", VisitorKey: "a", CreatedAt: now})
	require.NoError(t, err)
	_, err = visits.Insert(ctx, &models.Visit{ID: uuid.New(), UserID: owner, PagePath: "/john_doe", Device: "Desktop", Browser: "Chrome", OS: "Windows", VisitorKey: "b", CreatedAt: now})
	require.NoError(t, err)

	svc := service.NewAnalyticsService(clicks, visits)

	report, err := svc.Report(ctx, owner, "john_doe", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, report.Window)
	assert.Len(t, report.Clicks, 30)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Last24h)
	assert.Equal(t, 2, report.PerLink[linkID].Total)
	assert.Len(t, report.Devices, 2)

	report, err = svc.Report(ctx, owner, "john_doe", 12)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Window)

	clicks.Fail("ListByProfile", errors.New("db down"))
	_, err = svc.Report(ctx, owner, "john_doe", 7)
	assert.Error(t, err)
}
