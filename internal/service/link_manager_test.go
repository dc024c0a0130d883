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

const testProfile = "john_doe"

// setupLinkManager создаёт менеджер поверх моковых репозиториев
func setupLinkManager(t *testing.T, opts service.LinkManagerOptions) (*service.LinkManager, *mocks.MockLinkRepository, *mocks.MockCacheRepository, uuid.UUID) {
	t.Helper()
	linkRepo := mocks.NewMockLinkRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	userID := uuid.New()
	m := service.NewLinkManager(linkRepo, cacheRepo, userID, testProfile, opts, nil)
	require.NoError(t, m.Load(context.Background()))
	return m, linkRepo, cacheRepo, userID
}

// seedCanvas добавляет и активирует ссылки с указанными названиями
func seedCanvas(t *testing.T, m *service.LinkManager, titles ...string) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	ids := make([]uuid.UUID, 0, len(titles))
	for _, title := range titles {
		link, err := m.Add(ctx, models.LinkInput{Title: title, URL: "https://example.com/" + title})
		require.NoError(t, err)
		require.NoError(t, m.Activate(ctx, link.ID))
		ids = append(ids, link.ID)
	}
	return ids
}

func titles(links []models.Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.Title
	}
	return out
}

func positions(links []models.Link) []int {
	out := make([]int, len(links))
	for i, l := range links {
		out[i] = l.Position
	}
	return out
}

// assertExclusive каждая ссылка ровно в одном из списков
func assertExclusive(t *testing.T, set models.LinkSet) {
	t.Helper()
	seen := make(map[uuid.UUID]int)
	for _, l := range set.Canvas {
		seen[l.ID]++
		assert.True(t, l.IsActive)
	}
	for _, l := range set.Available {
		seen[l.ID]++
		assert.False(t, l.IsActive)
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "link %s in both lists", id)
	}
}

func TestLinkManager_Add_Positions(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()

	first, err := m.Add(ctx, models.LinkInput{Title: "A", URL: "https://a.example"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.False(t, first.IsActive)

	second, err := m.Add(ctx, models.LinkInput{Title: "B", URL: "https://b.example"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	third, err := m.Add(ctx, models.LinkInput{Title: "C", URL: "https://c.example"})
	require.NoError(t, err)
	assert.Equal(t, 2, third.Position)

	// Удаление создаёт дыру, но новая позиция всё равно max+1
	require.NoError(t, m.Delete(ctx, second.ID))
	fourth, err := m.Add(ctx, models.LinkInput{Title: "D", URL: "https://d.example"})
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.Position)

	set := m.Snapshot()
	assert.Empty(t, set.Canvas)
	assert.Equal(t, []string{"A", "C", "D"}, titles(set.Available))

	stored, ok := linkRepo.Stored(fourth.ID)
	require.True(t, ok)
	assert.Equal(t, 3, stored.Position)
}

func TestLinkManager_Add_SetsCreatedAt(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})

	before := time.Now().UTC()
	link, err := m.Add(context.Background(), models.LinkInput{Title: "A", URL: "https://a.example"})
	require.NoError(t, err)

	stored, ok := linkRepo.Stored(link.ID)
	require.True(t, ok)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.WithinDuration(t, before, stored.CreatedAt, time.Minute)
	assert.Equal(t, stored.CreatedAt, link.CreatedAt)
}

func TestLinkManager_Add_Validation(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	icon := "myspace"

	tests := []struct {
		name    string
		input   models.LinkInput
		wantErr error
	}{
		{"пустое название", models.LinkInput{Title: "  ", URL: "https://a.example"}, service.ErrEmptyTitle},
		{"пустой URL", models.LinkInput{Title: "A", URL: ""}, service.ErrEmptyURL},
		{"невалидный URL", models.LinkInput{Title: "A", URL: "javascript:alert(1)"}, service.ErrInvalidURL},
		{"URL без хоста", models.LinkInput{Title: "A", URL: "https://"}, service.ErrInvalidURL},
		{"неизвестная иконка", models.LinkInput{Title: "A", URL: "https://a.example", Icon: &icon}, service.ErrUnknownIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Add(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, service.IsValidation(err))
		})
	}

	// Валидация происходит до обращения к хранилищу
	assert.Equal(t, 0, linkRepo.Calls("Create"))

	mail := "email"
	link, err := m.Add(ctx, models.LinkInput{Title: "Mail", URL: "mailto:me@example.com", Icon: &mail})
	require.NoError(t, err)
	assert.Equal(t, "email", *link.Icon)
}

func TestLinkManager_MembershipExclusive(t *testing.T) {
	m, _, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	ids := seedCanvas(t, m, "A", "B", "C")

	steps := []func() error{
		func() error { return m.Deactivate(ctx, ids[1]) },
		func() error { return m.Activate(ctx, ids[1]) },
		func() error { return m.DragToAvailable(ctx, ids[0]) },
		func() error { return m.Deactivate(ctx, ids[2]) },
		func() error { return m.Activate(ctx, ids[0]) },
		func() error { return m.Activate(ctx, ids[2]) },
	}
	for _, step := range steps {
		require.NoError(t, step())
		assertExclusive(t, m.Snapshot())
	}

	assert.Equal(t, []string{"B", "A", "C"}, titles(m.Snapshot().Canvas))

	// Повторная активация активной ссылки не находит её в available
	assert.ErrorIs(t, m.Activate(ctx, ids[0]), service.ErrLinkNotFound)
	assert.ErrorIs(t, m.Deactivate(ctx, uuid.New()), service.ErrLinkNotFound)
}

func TestLinkManager_Activate_AppendsAtEnd(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ids := seedCanvas(t, m, "A", "B", "C")

	set := m.Snapshot()
	assert.Equal(t, []string{"A", "B", "C"}, titles(set.Canvas))
	assert.Equal(t, []int{0, 1, 2}, positions(set.Canvas))

	stored, ok := linkRepo.Stored(ids[2])
	require.True(t, ok)
	assert.True(t, stored.IsActive)
	assert.Equal(t, 2, stored.Position)
}

func TestLinkManager_Reorder(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	ids := seedCanvas(t, m, "A", "B", "C", "D")

	t.Run("from == to ничего не делает", func(t *testing.T) {
		before := linkRepo.Calls("ApplyPositions")
		require.NoError(t, m.Reorder(ctx, 2, 2))
		require.NoError(t, m.Reorder(ctx, 2, 2))
		assert.Equal(t, before, linkRepo.Calls("ApplyPositions"))
		assert.Equal(t, []string{"A", "B", "C", "D"}, titles(m.Snapshot().Canvas))
	})

	t.Run("splice, а не swap", func(t *testing.T) {
		require.NoError(t, m.Reorder(ctx, 0, 2))
		set := m.Snapshot()
		assert.Equal(t, []string{"B", "C", "A", "D"}, titles(set.Canvas))
		assert.Equal(t, []int{0, 1, 2, 3}, positions(set.Canvas))

		stored, _ := linkRepo.Stored(ids[0])
		assert.Equal(t, 2, stored.Position)
	})

	t.Run("позиции без дыр и дублей", func(t *testing.T) {
		require.NoError(t, m.Reorder(ctx, 3, 0))
		require.NoError(t, m.Reorder(ctx, 1, 3))
		assert.Equal(t, []int{0, 1, 2, 3}, positions(m.Snapshot().Canvas))

		for i, l := range m.Snapshot().Canvas {
			stored, _ := linkRepo.Stored(l.ID)
			assert.Equal(t, i, stored.Position)
		}
	})

	t.Run("индекс вне диапазона", func(t *testing.T) {
		assert.ErrorIs(t, m.Reorder(ctx, -1, 0), service.ErrIndexOutOfRange)
		assert.ErrorIs(t, m.Reorder(ctx, 0, 4), service.ErrIndexOutOfRange)
	})
}

func TestLinkManager_DragToAvailable_VersusDeactivate(t *testing.T) {
	t.Run("drag-to-remove перенумеровывает", func(t *testing.T) {
		m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
		ids := seedCanvas(t, m, "A", "B", "C")

		require.NoError(t, m.DragToAvailable(context.Background(), ids[1]))

		set := m.Snapshot()
		assert.Equal(t, []string{"A", "C"}, titles(set.Canvas))
		assert.Equal(t, []int{0, 1}, positions(set.Canvas))

		storedC, _ := linkRepo.Stored(ids[2])
		assert.Equal(t, 1, storedC.Position)
		storedB, _ := linkRepo.Stored(ids[1])
		assert.False(t, storedB.IsActive)
	})

	t.Run("deactivate сохраняет дыру", func(t *testing.T) {
		m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
		ids := seedCanvas(t, m, "A", "B", "C")

		require.NoError(t, m.Deactivate(context.Background(), ids[1]))

		set := m.Snapshot()
		assert.Equal(t, []string{"A", "C"}, titles(set.Canvas))
		assert.Equal(t, []int{0, 2}, positions(set.Canvas))

		storedA, _ := linkRepo.Stored(ids[0])
		storedC, _ := linkRepo.Stored(ids[2])
		assert.Equal(t, 0, storedA.Position)
		assert.Equal(t, 2, storedC.Position)
	})

	t.Run("deactivate с перенумерацией", func(t *testing.T) {
		m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{RenumberOnDeactivate: true})
		ids := seedCanvas(t, m, "A", "B", "C")

		require.NoError(t, m.Deactivate(context.Background(), ids[1]))

		assert.Equal(t, []int{0, 1}, positions(m.Snapshot().Canvas))
		storedC, _ := linkRepo.Stored(ids[2])
		assert.Equal(t, 1, storedC.Position)
	})
}

func TestLinkManager_Edit(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	ids := seedCanvas(t, m, "A")

	github := "github"
	updated, err := m.Edit(ctx, ids[0], models.LinkInput{Title: "Code", URL: "https://github.com/me", Icon: &github})
	require.NoError(t, err)
	assert.Equal(t, "Code", updated.Title)
	assert.True(t, updated.IsActive)

	stored, _ := linkRepo.Stored(ids[0])
	assert.Equal(t, "https://github.com/me", stored.URL)
	assert.Equal(t, "Code", m.Snapshot().Canvas[0].Title)

	_, err = m.Edit(ctx, uuid.New(), models.LinkInput{Title: "X", URL: "https://x.example"})
	assert.ErrorIs(t, err, service.ErrLinkNotFound)

	_, err = m.Edit(ctx, ids[0], models.LinkInput{Title: "", URL: "https://x.example"})
	assert.ErrorIs(t, err, service.ErrEmptyTitle)
}

func TestLinkManager_StorageFailureReloads(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	seedCanvas(t, m, "A", "B", "C")

	linkRepo.Fail("ApplyPositions", errors.New("connection reset"))
	err := m.Reorder(ctx, 0, 2)
	require.Error(t, err)

	// Локальное оптимистичное изменение откатилось к состоянию хранилища
	set := m.Snapshot()
	assert.Equal(t, []string{"A", "B", "C"}, titles(set.Canvas))
	assert.Equal(t, []int{0, 1, 2}, positions(set.Canvas))

	linkRepo.Fail("ApplyPositions", nil)
	linkRepo.Fail("ListByProfile", errors.New("db down"))
	require.Error(t, m.Load(ctx))
	set = m.Snapshot()
	assert.Empty(t, set.Canvas)
	assert.Empty(t, set.Available)
}

func TestLinkManager_Delete(t *testing.T) {
	m, linkRepo, _, _ := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()
	ids := seedCanvas(t, m, "A", "B")

	require.NoError(t, m.Delete(ctx, ids[0]))
	_, ok := linkRepo.Stored(ids[0])
	assert.False(t, ok)
	assert.Equal(t, []string{"B"}, titles(m.Snapshot().Canvas))

	assert.ErrorIs(t, m.Delete(ctx, ids[0]), service.ErrLinkNotFound)

	linkRepo.Fail("Delete", errors.New("timeout"))
	require.Error(t, m.Delete(ctx, ids[1]))
	// Ссылка осталась в хранилище и вернулась после перезагрузки
	assert.Equal(t, []string{"B"}, titles(m.Snapshot().Canvas))
}

func TestLinkManager_InvalidatesPublicCache(t *testing.T) {
	m, _, cacheRepo, userID := setupLinkManager(t, service.LinkManagerOptions{})
	ctx := context.Background()

	page := &models.PublicProfile{Profile: models.Profile{ID: userID, Username: testProfile, CreatedAt: time.Now()}}
	require.NoError(t, cacheRepo.SetPublicProfile(ctx, page, time.Minute))

	seedCanvas(t, m, "A")
	assert.False(t, cacheRepo.Cached(testProfile))
}
