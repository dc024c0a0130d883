package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/SergeiKhy/linkstack/internal/models"
	"github.com/SergeiKhy/linkstack/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// LinkManagerOptions политика перенумерации
type LinkManagerOptions struct {
	// RenumberOnDeactivate перенумеровывать canvas после любого удаления ссылки из него
	RenumberOnDeactivate bool
}

// LinkManager ссылки одного профиля: canvas (активные, по порядку) и available (скрытые).
// Изменения применяются локально и сразу сохраняются; при ошибке хранилища
// состояние перезагружается целиком.
type LinkManager struct {
	mu        sync.Mutex
	userID    uuid.UUID
	profile   string
	canvas    []models.Link
	available []models.Link

	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	opts      LinkManagerOptions
	now       func() time.Time
	logger    *zap.Logger
}

func NewLinkManager(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	userID uuid.UUID,
	profile string,
	opts LinkManagerOptions,
	logger *zap.Logger,
) *LinkManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkManager{
		userID:    userID,
		profile:   profile,
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

func (m *LinkManager) Profile() string {
	return m.profile
}

// Load перечитывает ссылки профиля. При ошибке оба списка пусты.
func (m *LinkManager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *LinkManager) load(ctx context.Context) error {
	links, err := m.linkRepo.ListByProfile(ctx, m.userID, m.profile)
	if err != nil {
		m.canvas = nil
		m.available = nil
		return fmt.Errorf("failed to load links: %w", err)
	}

	m.canvas = make([]models.Link, 0, len(links))
	m.available = make([]models.Link, 0)
	for _, l := range links {
		if l.IsActive {
			m.canvas = append(m.canvas, l)
		} else {
			m.available = append(m.available, l)
		}
	}
	return nil
}

// Snapshot копия текущего состояния
func (m *LinkManager) Snapshot() models.LinkSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.LinkSet{
		Canvas:    append([]models.Link{}, m.canvas...),
		Available: append([]models.Link{}, m.available...),
	}
}

func validateLinkInput(input models.LinkInput) (models.LinkInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.URL = strings.TrimSpace(input.URL)

	if input.Title == "" {
		return input, ErrEmptyTitle
	}
	if input.URL == "" {
		return input, ErrEmptyURL
	}

	u, err := url.Parse(input.URL)
	if err != nil || !allowedSchemes[strings.ToLower(u.Scheme)] {
		return input, ErrInvalidURL
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return input, ErrInvalidURL
	}

	if input.Icon != nil {
		icon := strings.TrimSpace(*input.Icon)
		if icon == "" {
			input.Icon = nil
		} else if !models.IsKnownIcon(icon) {
			return input, ErrUnknownIcon
		} else {
			input.Icon = &icon
		}
	}
	return input, nil
}

// Add создаёт скрытую ссылку в конце порядка: max(position)+1 или 0
func (m *LinkManager) Add(ctx context.Context, input models.LinkInput) (*models.Link, error) {
	input, err := validateLinkInput(input)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	position := 0
	for _, list := range [][]models.Link{m.canvas, m.available} {
		for _, l := range list {
			if l.Position+1 > position {
				position = l.Position + 1
			}
		}
	}

	link := &models.Link{
		ID:        uuid.New(),
		UserID:    m.userID,
		Profile:   m.profile,
		Title:     input.Title,
		URL:       input.URL,
		Icon:      input.Icon,
		IsActive:  false,
		Position:  position,
		CreatedAt: m.now().UTC(),
	}

	if err := m.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	m.available = append(m.available, *link)
	return link, nil
}

// Edit сначала сохраняет изменения, затем отражает их в списке
func (m *LinkManager) Edit(ctx context.Context, id uuid.UUID, input models.LinkInput) (*models.Link, error) {
	input, err := validateLinkInput(input)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, idx := m.find(id)
	if idx < 0 {
		return nil, ErrLinkNotFound
	}

	updated := (*list)[idx]
	updated.Title = input.Title
	updated.URL = input.URL
	updated.Icon = input.Icon

	if err := m.linkRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			m.reconcile(ctx)
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	(*list)[idx] = updated
	m.invalidate(ctx)
	return &updated, nil
}

func (m *LinkManager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, idx := m.find(id)
	if idx < 0 {
		return ErrLinkNotFound
	}
	wasActive := list == &m.canvas
	*list = removeAt(*list, idx)

	if err := m.linkRepo.Delete(ctx, m.userID, id); err != nil {
		m.reconcile(ctx)
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if wasActive && m.opts.RenumberOnDeactivate {
		if err := m.persist(ctx, renumber(m.canvas)); err != nil {
			return err
		}
	}

	m.invalidate(ctx)
	return nil
}

// Activate переносит ссылку в конец canvas
func (m *LinkManager) Activate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := indexOf(m.available, id)
	if idx < 0 {
		return ErrLinkNotFound
	}

	link := m.available[idx]
	m.available = removeAt(m.available, idx)
	link.IsActive = true
	link.Position = len(m.canvas)
	m.canvas = append(m.canvas, link)

	return m.persist(ctx, []models.PositionUpdate{toUpdate(link)})
}

// Deactivate переносит ссылку в available. Оставшиеся позиции не меняются,
// если не включена опция RenumberOnDeactivate.
func (m *LinkManager) Deactivate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.RenumberOnDeactivate {
		return m.removeFromCanvas(ctx, id)
	}

	idx := indexOf(m.canvas, id)
	if idx < 0 {
		return ErrLinkNotFound
	}

	link := m.canvas[idx]
	m.canvas = removeAt(m.canvas, idx)
	link.IsActive = false
	m.available = append(m.available, link)

	return m.persist(ctx, []models.PositionUpdate{toUpdate(link)})
}

// DragToAvailable убирает ссылку с canvas и перенумеровывает оставшиеся 0..n-1 одной пачкой
func (m *LinkManager) DragToAvailable(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeFromCanvas(ctx, id)
}

func (m *LinkManager) removeFromCanvas(ctx context.Context, id uuid.UUID) error {
	idx := indexOf(m.canvas, id)
	if idx < 0 {
		return ErrLinkNotFound
	}

	link := m.canvas[idx]
	m.canvas = removeAt(m.canvas, idx)
	link.IsActive = false
	m.available = append(m.available, link)

	updates := append([]models.PositionUpdate{toUpdate(link)}, renumber(m.canvas)...)
	return m.persist(ctx, updates)
}

// Reorder перемещает элемент canvas с from на to (splice) и перезаписывает все позиции
func (m *LinkManager) Reorder(ctx context.Context, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.canvas)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: from=%d to=%d len=%d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	link := m.canvas[from]
	m.canvas = removeAt(m.canvas, from)
	m.canvas = insertAt(m.canvas, to, link)

	return m.persist(ctx, renumber(m.canvas))
}

// persist пишет пачку атомарно; при ошибке состояние перечитывается из хранилища
func (m *LinkManager) persist(ctx context.Context, updates []models.PositionUpdate) error {
	if err := m.linkRepo.ApplyPositions(ctx, m.userID, m.profile, updates); err != nil {
		m.logger.Warn("Не удалось сохранить порядок ссылок, перезагрузка",
			zap.String("profile", m.profile),
			zap.Error(err),
		)
		m.reconcile(ctx)
		return fmt.Errorf("failed to persist link positions: %w", err)
	}
	m.invalidate(ctx)
	return nil
}

func (m *LinkManager) reconcile(ctx context.Context) {
	if err := m.load(ctx); err != nil {
		m.logger.Error("Не удалось перезагрузить ссылки", zap.String("profile", m.profile), zap.Error(err))
	}
	m.invalidate(ctx)
}

// invalidate сбрасывает кеш публичной страницы профиля
func (m *LinkManager) invalidate(ctx context.Context) {
	if m.cacheRepo == nil {
		return
	}
	if err := m.cacheRepo.DeletePublicProfile(ctx, m.profile); err != nil {
		m.logger.Warn("Не удалось сбросить кеш профиля", zap.String("profile", m.profile), zap.Error(err))
	}
}

func (m *LinkManager) find(id uuid.UUID) (*[]models.Link, int) {
	if idx := indexOf(m.canvas, id); idx >= 0 {
		return &m.canvas, idx
	}
	if idx := indexOf(m.available, id); idx >= 0 {
		return &m.available, idx
	}
	return nil, -1
}

// renumber выставляет position = index и возвращает пачку обновлений
func renumber(canvas []models.Link) []models.PositionUpdate {
	updates := make([]models.PositionUpdate, len(canvas))
	for i := range canvas {
		canvas[i].Position = i
		updates[i] = toUpdate(canvas[i])
	}
	return updates
}

func toUpdate(l models.Link) models.PositionUpdate {
	return models.PositionUpdate{ID: l.ID, IsActive: l.IsActive, Position: l.Position}
}

func indexOf(links []models.Link, id uuid.UUID) int {
	for i, l := range links {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(links []models.Link, idx int) []models.Link {
	out := make([]models.Link, 0, len(links)-1)
	out = append(out, links[:idx]...)
	return append(out, links[idx+1:]...)
}

func insertAt(links []models.Link, idx int, link models.Link) []models.Link {
	out := make([]models.Link, 0, len(links)+1)
	out = append(out, links[:idx]...)
	out = append(out, link)
	return append(out, links[idx:]...)
}
