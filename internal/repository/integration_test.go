package repository

import (
	"context"
	"testing"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testEnv хранит подключения к контейнерам для интеграционных тестов
type testEnv struct {
	db    *PostgresDB
	redis *RedisDB
}

// setupTestEnv поднимает PostgreSQL и Redis и применяет миграции
func setupTestEnv(t *testing.T) *testEnv {
	ctx := t.Context()

	dbContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("linkstack"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { dbContainer.Terminate(context.Background()) })

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { redisContainer.Terminate(context.Background()) })

	dbHost, err := dbContainer.Host(ctx)
	require.NoError(t, err)
	dbPort, err := dbContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	db, err := NewPostgresDB(config.DBConfig{
		Host:     dbHost,
		Port:     dbPort.Port(),
		User:     "user",
		Password: "password",
		Name:     "linkstack",
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))

	redisDB, err := NewRedisClient(config.RedisConfig{
		Host: redisHost,
		Port: redisPort.Port(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { redisDB.Close() })

	return &testEnv{db: db, redis: redisDB}
}

func seedProfile(t *testing.T, env *testEnv, username string) (*models.User, *models.Profile) {
	ctx := t.Context()

	user := &models.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, NewUserRepository(env.db).Create(ctx, user))

	profile := &models.Profile{
		ID:          user.ID,
		Username:    username,
		ThemeConfig: models.DefaultTheme(),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, NewProfileRepository(env.db).Create(ctx, profile))

	return user, profile
}

func TestIntegration_Repositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	env := setupTestEnv(t)
	ctx := t.Context()

	users := NewUserRepository(env.db)
	profiles := NewProfileRepository(env.db)
	links := NewLinkRepository(env.db)
	clicks := NewClickRepository(env.db)
	visits := NewVisitorRepository(env.db)

	user, profile := seedProfile(t, env, "john_doe")

	t.Run("дубликат email", func(t *testing.T) {
		err := users.Create(ctx, &models.User{
			ID:           uuid.New(),
			Email:        "JOHN_DOE@example.com",
			PasswordHash: "hash",
			CreatedAt:    time.Now(),
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("username без учёта регистра", func(t *testing.T) {
		exists, err := profiles.UsernameExists(ctx, "John_Doe")
		require.NoError(t, err)
		assert.True(t, exists)

		err = profiles.Create(ctx, &models.Profile{
			ID:          user.ID,
			Username:    "JOHN_DOE",
			ThemeConfig: models.DefaultTheme(),
			CreatedAt:   time.Now(),
		})
		assert.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("тема сохраняется и читается", func(t *testing.T) {
		got, err := profiles.GetByUsername(ctx, "john_doe")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTheme(), got.ThemeConfig)

		bio := "hello"
		got.Bio = &bio
		got.ThemeConfig.ButtonStyle = models.ButtonPill
		require.NoError(t, profiles.Update(ctx, got))

		again, err := profiles.GetByUsername(ctx, "john_doe")
		require.NoError(t, err)
		assert.Equal(t, "hello", *again.Bio)
		assert.Equal(t, models.ButtonPill, again.ThemeConfig.ButtonStyle)
	})

	t.Run("created_at по умолчанию из БД", func(t *testing.T) {
		link := &models.Link{
			ID:       uuid.New(),
			UserID:   user.ID,
			Profile:  profile.Username,
			Title:    "Zero",
			URL:      "https://example.com/zero",
			Position: 99,
		}
		require.NoError(t, links.Create(ctx, link))
		assert.WithinDuration(t, time.Now(), link.CreatedAt, time.Minute)

		stored, err := links.GetByID(ctx, link.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), stored.CreatedAt, time.Minute)
		require.NoError(t, links.Delete(ctx, user.ID, link.ID))
	})

	t.Run("пакетная перенумерация атомарна", func(t *testing.T) {
		var ids []uuid.UUID
		for i, title := range []string{"A", "B", "C"} {
			link := &models.Link{
				ID:        uuid.New(),
				UserID:    user.ID,
				Profile:   profile.Username,
				Title:     title,
				URL:       "https://example.com/" + title,
				IsActive:  true,
				Position:  i,
				CreatedAt: time.Now(),
			}
			require.NoError(t, links.Create(ctx, link))
			ids = append(ids, link.ID)
		}

		err := links.ApplyPositions(ctx, user.ID, profile.Username, []models.PositionUpdate{
			{ID: ids[2], IsActive: true, Position: 0},
			{ID: uuid.New(), IsActive: true, Position: 1},
		})
		assert.ErrorIs(t, err, ErrLinkNotFound)

		active, err := links.ListActiveByProfile(ctx, user.ID, profile.Username)
		require.NoError(t, err)
		require.Len(t, active, 3)
		assert.Equal(t, "A", active[0].Title)

		err = links.ApplyPositions(ctx, user.ID, profile.Username, []models.PositionUpdate{
			{ID: ids[0], IsActive: true, Position: 0},
			{ID: ids[1], IsActive: false, Position: 1},
			{ID: ids[2], IsActive: true, Position: 1},
		})
		require.NoError(t, err)

		active, err = links.ListActiveByProfile(ctx, user.ID, profile.Username)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "A", active[0].Title)
		assert.Equal(t, "C", active[1].Title)
		assert.Equal(t, 1, active[1].Position)

		require.NoError(t, clicks.RecordClick(ctx, &models.Click{
			ID:        uuid.New(),
			LinkID:    ids[0],
			UserID:    user.ID,
			Profile:   profile.Username,
			CreatedAt: time.Now(),
		}))
		recorded, err := clicks.ListByProfile(ctx, user.ID, profile.Username)
		require.NoError(t, err)
		assert.Len(t, recorded, 1)
	})

	t.Run("дедупликация посещений", func(t *testing.T) {
		day := time.Now().UTC().Truncate(24 * time.Hour)
		newVisit := func() *models.Visit {
			return &models.Visit{
				ID:         uuid.New(),
				UserID:     user.ID,
				PagePath:   "/john_doe",
				Device:     "Desktop",
				Browser:    "Firefox",
				OS:         "Linux",
				VisitorKey: "anon-1",
				VisitDay:   day,
				CreatedAt:  time.Now(),
			}
		}

		inserted, err := visits.Insert(ctx, newVisit())
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = visits.Insert(ctx, newVisit())
		require.NoError(t, err)
		assert.False(t, inserted)

		exists, err := visits.Exists(ctx, user.ID, "/john_doe", "anon-1", day)
		require.NoError(t, err)
		assert.True(t, exists)

		rows, err := visits.ListByPage(ctx, user.ID, "/john_doe")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestIntegration_RedisRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	env := setupTestEnv(t)
	ctx := t.Context()

	prefs := NewPreferenceRepository(env.redis)
	cache := NewCacheRepository(env.redis)
	userID := uuid.New()

	selected, err := prefs.GetSelectedProfile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, selected)

	require.NoError(t, prefs.SetSelectedProfile(ctx, userID, "second"))
	selected, err = prefs.GetSelectedProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "second", selected)

	require.NoError(t, prefs.ClearSelectedProfile(ctx, userID))
	selected, err = prefs.GetSelectedProfile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, selected)

	page := &models.PublicProfile{
		Profile: models.Profile{ID: userID, Username: "Second", ThemeConfig: models.DefaultTheme()},
		Links:   []models.Link{},
	}
	require.NoError(t, cache.SetPublicProfile(ctx, page, time.Minute))

	got, err := cache.GetPublicProfile(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Profile.Username)

	require.NoError(t, cache.DeletePublicProfile(ctx, "SECOND"))
	_, err = cache.GetPublicProfile(ctx, "second")
	assert.Error(t, err)
}
