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

func TestClickProcessor_RecordsClick(t *testing.T) {
	repo := mocks.NewMockClickRepository()
	processor := service.NewClickProcessor(repo, nil)
	processor.Start()
	defer processor.Stop()

	owner := uuid.New()
	event := &models.ClickEvent{LinkID: uuid.New(), OwnerID: owner, Profile: "john_doe"}
	require.NoError(t, processor.Enqueue(context.Background(), event))

	assert.Eventually(t, func() bool { return repo.Count() == 1 }, time.Second, 10*time.Millisecond)

	clicks, err := repo.ListByProfile(context.Background(), owner, "john_doe")
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, event.LinkID, clicks[0].LinkID)
	assert.NotEqual(t, uuid.Nil, clicks[0].ID)
}

func TestClickProcessor_Retries(t *testing.T) {
	repo := mocks.NewMockClickRepository()
	repo.Fail("RecordClick", errors.New("db down"))

	processor := service.NewClickProcessor(repo, nil)
	processor.Start()
	defer processor.Stop()

	event := &models.ClickEvent{LinkID: uuid.New(), OwnerID: uuid.New(), Profile: "john_doe"}
	require.NoError(t, processor.Enqueue(context.Background(), event))

	assert.Eventually(t, func() bool { return repo.Calls("RecordClick") == 3 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, repo.Calls("RecordClick"))
	assert.Equal(t, 0, repo.Count())
}

func TestClickProcessor_ChannelStats(t *testing.T) {
	processor := service.NewClickProcessor(mocks.NewMockClickRepository(), nil)

	// Без запущенных воркеров события копятся в буфере
	for i := 0; i < 5; i++ {
		require.NoError(t, processor.Enqueue(context.Background(), &models.ClickEvent{LinkID: uuid.New()}))
	}

	stats := processor.GetChannelStats()
	assert.Equal(t, 1000, stats.BufferSize)
	assert.Equal(t, 5, stats.BufferUsed)
	assert.Equal(t, 3, stats.WorkerCount)

	// Stop без Start не паникует
	processor.Stop()
}

func TestClickProcessor_EnqueueCancelled(t *testing.T) {
	processor := service.NewClickProcessor(mocks.NewMockClickRepository(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Буфер свободен, но отмена всегда побеждает
	for i := 0; i < 100; i++ {
		err := processor.Enqueue(ctx, &models.ClickEvent{LinkID: uuid.New()})
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 0, processor.GetChannelStats().BufferUsed)
}
