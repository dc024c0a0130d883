package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileContext состояние сессии одного пользователя: его профили и выбранный профиль.
// Изменения текущего профиля до сохранения живут только здесь (черновик).
type ProfileContext struct {
	mu       sync.RWMutex
	userID   uuid.UUID
	user     *models.User
	profiles []models.Profile
	current  *models.Profile

	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	onSwitch    []func(username string)
	logger      *zap.Logger
}

func NewProfileContext(
	user *models.User,
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	logger *zap.Logger,
) *ProfileContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileContext{
		userID:      user.ID,
		user:        user,
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		logger:      logger,
	}
}

// Load загружает профили и выбирает текущий: сохранённый в предпочтениях, иначе первый.
// При ошибке список пуст, текущего профиля нет.
func (c *ProfileContext) Load(ctx context.Context) error {
	profiles, err := c.profileRepo.ListByOwner(ctx, c.userID)
	if err != nil {
		c.mu.Lock()
		c.profiles = nil
		c.current = nil
		c.mu.Unlock()
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	preferred, err := c.prefRepo.GetSelectedProfile(ctx, c.userID)
	if err != nil {
		// Без предпочтения выбираем первый профиль
		c.logger.Warn("Не удалось прочитать выбранный профиль",
			zap.String("user_id", c.userID.String()),
			zap.Error(err),
		)
		preferred = ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.profiles = profiles
	c.current = selectProfile(profiles, preferred)
	return nil
}

// Refresh перечитывает профили, сохраняя текущий выбор, если профиль ещё существует
func (c *ProfileContext) Refresh(ctx context.Context) error {
	profiles, err := c.profileRepo.ListByOwner(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("failed to refresh profiles: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	selected := ""
	if c.current != nil {
		selected = c.current.Username
	}
	c.profiles = profiles
	c.current = selectProfile(profiles, selected)
	return nil
}

func selectProfile(profiles []models.Profile, preferred string) *models.Profile {
	if len(profiles) == 0 {
		return nil
	}
	for _, p := range profiles {
		if preferred != "" && strings.EqualFold(p.Username, preferred) {
			selected := p
			return &selected
		}
	}
	first := profiles[0]
	return &first
}

// SwitchProfile возвращает false, если у пользователя нет такого профиля
func (c *ProfileContext) SwitchProfile(ctx context.Context, username string) (bool, error) {
	c.mu.Lock()
	var target *models.Profile
	for _, p := range c.profiles {
		if strings.EqualFold(p.Username, username) {
			selected := p
			target = &selected
			break
		}
	}
	if target == nil {
		c.mu.Unlock()
		return false, nil
	}
	c.current = target
	listeners := append([]func(string){}, c.onSwitch...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(target.Username)
	}

	if err := c.prefRepo.SetSelectedProfile(ctx, c.userID, target.Username); err != nil {
		return true, fmt.Errorf("failed to persist selected profile: %w", err)
	}
	return true, nil
}

// OnSwitch подписка на смену текущего профиля
func (c *ProfileContext) OnSwitch(fn func(username string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSwitch = append(c.onSwitch, fn)
}

func (c *ProfileContext) UserID() uuid.UUID {
	return c.userID
}

func (c *ProfileContext) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *ProfileContext) Profiles() []models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// Current копия текущего профиля (с черновыми правками) или nil
func (c *ProfileContext) Current() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	p := *c.current
	return &p
}

// UpdateCurrent применяет правку к черновику текущего профиля
func (c *ProfileContext) UpdateCurrent(fn func(p *models.Profile)) (*models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoProfile
	}
	fn(c.current)
	p := *c.current
	return &p, nil
}

// Clear сбрасывает состояние при выходе
func (c *ProfileContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.profiles = nil
	c.current = nil
}
